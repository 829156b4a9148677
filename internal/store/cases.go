package store

import (
	"encoding/json"

	"github.com/gumruklab/gtip/internal/model"
)

// CaseStore is the append-only precedent log. Cases are immutable once
// appended; removal happens only through RemoveByIDs, which rewrites
// the survivor set.
type CaseStore struct {
	path   string
	writer *LogWriter
}

// NewCaseStore creates the store and its writer goroutine.
func NewCaseStore(path string) *CaseStore {
	return &CaseStore{
		path:   path,
		writer: NewLogWriter(path),
	}
}

// LoadAll returns every parseable case in encounter order. Malformed
// lines are skipped; a missing file is an empty store.
func (s *CaseStore) LoadAll() []model.Case {
	var cases []model.Case
	for _, line := range readLines(s.path) {
		var c model.Case
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			continue
		}
		cases = append(cases, c)
	}
	return cases
}

// Append durably adds one case. Safe to call from any number of
// concurrent workers; the writer goroutine serializes and fsyncs.
func (s *CaseStore) Append(c model.Case) error {
	return s.writer.Append(c)
}

// RemoveByIDs rewrites the log without the named cases and reports how
// many survived the filter. Malformed lines do not survive a rewrite.
func (s *CaseStore) RemoveByIDs(ids map[string]bool) (kept int, err error) {
	err = s.writer.Rewrite(func(lines []string) []string {
		var surviving []string
		for _, line := range lines {
			var c model.Case
			if err := json.Unmarshal([]byte(line), &c); err != nil {
				continue
			}
			if ids[c.ID] {
				continue
			}
			surviving = append(surviving, line)
		}
		kept = len(surviving)
		return surviving
	})
	return kept, err
}

// Close flushes and stops the writer goroutine.
func (s *CaseStore) Close() {
	s.writer.Close()
}
