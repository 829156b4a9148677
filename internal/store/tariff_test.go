package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gumruklab/gtip/internal/model"
)

func newTestTariffStore(t *testing.T) *TariffStore {
	t.Helper()
	dir := t.TempDir()
	return NewTariffStore(filepath.Join(dir, "tariff.jsonl"), filepath.Join(dir, "tariff_meta.json"))
}

func TestTariffStore_MissingFileIsEmpty(t *testing.T) {
	s := newTestTariffStore(t)
	if records := s.Load(); len(records) != 0 {
		t.Errorf("expected empty store, got %d records", len(records))
	}
}

func TestTariffStore_SkipsMalformedLines(t *testing.T) {
	s := newTestTariffStore(t)
	content := `{"code":"3824.99","description":"mixtures","tax_rate_percent":"6.5"}
this line is not json
{"code":"2710.19","description":"oils","tax_rate_percent":"4.6"}
`
	if err := os.WriteFile(s.path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	records := s.Load()
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (malformed skipped)", len(records))
	}
	if records[0].Code != "3824.99" || records[1].Code != "2710.19" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestTariffStore_ReplaceAllRoundTrip(t *testing.T) {
	s := newTestTariffStore(t)
	records := []model.TariffRecord{
		{Code: "3824.99", Description: "mixtures", TaxRatePercent: "6.5", ValidUntilRaw: "2029-12-31"},
		{Code: "3824.99", Description: "mixtures", TaxRatePercent: "6.5", ValidUntilRaw: "2029-12-31"},
		{Code: "2710.19", Description: "oils", TaxRatePercent: "4.6"},
	}
	meta := model.TariffMeta{Filename: "list_v.xlsx", UploadDate: "2025-06-01 10:00", TotalRecords: 3}

	if err := s.ReplaceAll(records, meta); err != nil {
		t.Fatal(err)
	}

	loaded := s.Load()
	if len(loaded) != 3 {
		t.Fatalf("got %d records, want 3", len(loaded))
	}
	// Duplicate descriptions under the same or different codes are
	// legitimate and must survive a round trip.
	if loaded[0].Description != loaded[1].Description {
		t.Error("duplicate records collapsed")
	}

	gotMeta, ok := s.Meta()
	if !ok {
		t.Fatal("expected meta after upload")
	}
	if gotMeta.Filename != "list_v.xlsx" || gotMeta.TotalRecords != 3 {
		t.Errorf("unexpected meta: %+v", gotMeta)
	}
}

func TestTariffStore_ReplaceAllInvalidatesCache(t *testing.T) {
	s := newTestTariffStore(t)
	if err := s.ReplaceAll([]model.TariffRecord{{Code: "1", Description: "one"}}, model.TariffMeta{}); err != nil {
		t.Fatal(err)
	}
	if got := len(s.Load()); got != 1 {
		t.Fatalf("got %d records, want 1", got)
	}

	if err := s.ReplaceAll([]model.TariffRecord{
		{Code: "1", Description: "one"},
		{Code: "2", Description: "two"},
	}, model.TariffMeta{}); err != nil {
		t.Fatal(err)
	}
	if got := len(s.Load()); got != 2 {
		t.Errorf("stale cache: got %d records after re-upload, want 2", got)
	}
}

func TestTariffStore_MetaMissing(t *testing.T) {
	s := newTestTariffStore(t)
	if _, ok := s.Meta(); ok {
		t.Error("expected no meta before first upload")
	}
}
