package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/gumruklab/gtip/internal/model"
)

const tariffCacheKey = "tariff:v1"

// TariffStore owns the line-delimited tariff table and its meta file.
// The table is read-only during matching and bulk-replaced wholesale
// on each administrative upload. Loads within one process are served
// from an in-memory cache so batch operations that load once and pass
// records down don't pay for repeated file scans.
type TariffStore struct {
	path     string
	metaPath string
	cache    *gocache.Cache
}

// NewTariffStore creates a store over the given table and meta paths.
func NewTariffStore(path, metaPath string) *TariffStore {
	return &TariffStore{
		path:     path,
		metaPath: metaPath,
		cache:    gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// Path returns the location of the underlying table file (the keyword
// pre-filter scans it line by line without decoding).
func (s *TariffStore) Path() string { return s.path }

// Load returns every parseable record in the table. Malformed lines
// are skipped, a missing file is an empty store; the load is total and
// never fails.
func (s *TariffStore) Load() []model.TariffRecord {
	if cached, found := s.cache.Get(tariffCacheKey); found {
		return cached.([]model.TariffRecord)
	}

	var records []model.TariffRecord
	for _, line := range readLines(s.path) {
		var rec model.TariffRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}

	s.cache.Set(tariffCacheKey, records, gocache.DefaultExpiration)
	return records
}

// ReplaceAll rebuilds the table wholesale from records and stamps the
// meta file. The table is written to a temp file and renamed so a
// concurrent Load never sees a half-written table.
func (s *TariffStore) ReplaceAll(records []model.TariffRecord, meta model.TariffMeta) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	var b strings.Builder
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", rec.Code, err)
		}
		b.Write(line)
		b.WriteByte('\n')
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write tariff table: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace tariff table: %w", err)
	}

	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	if err := os.WriteFile(s.metaPath, metaData, 0644); err != nil {
		return fmt.Errorf("write tariff meta: %w", err)
	}

	s.cache.Delete(tariffCacheKey)
	return nil
}

// Meta reports when the table was last rebuilt. The second return is
// false when no upload has happened yet or the meta file is unreadable.
func (s *TariffStore) Meta() (model.TariffMeta, bool) {
	data, err := os.ReadFile(s.metaPath)
	if err != nil {
		return model.TariffMeta{}, false
	}
	var meta model.TariffMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return model.TariffMeta{}, false
	}
	return meta, true
}
