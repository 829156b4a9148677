package store

import (
	"encoding/json"
	"os"

	"github.com/gumruklab/gtip/internal/model"
)

// HistoryLog is an append-only activity log (search history or
// classification history). Unlike the case store, whole-log clears are
// allowed, and selective deletes key on the entry timestamp, which is
// unique per line in practice.
type HistoryLog struct {
	path   string
	writer *LogWriter
}

// NewHistoryLog creates the log and its writer goroutine.
func NewHistoryLog(path string) *HistoryLog {
	return &HistoryLog{
		path:   path,
		writer: NewLogWriter(path),
	}
}

// Append durably adds one entry (any JSON-marshalable record).
func (h *HistoryLog) Append(entry interface{}) error {
	return h.writer.Append(entry)
}

// SearchEntries returns the parseable search-log entries, newest
// first.
func (h *HistoryLog) SearchEntries() []model.SearchLogEntry {
	lines := readLines(h.path)
	entries := make([]model.SearchLogEntry, 0, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		var e model.SearchLogEntry
		if err := json.Unmarshal([]byte(lines[i]), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// ClassificationEntries returns the parseable classification-log
// entries, newest first.
func (h *HistoryLog) ClassificationEntries() []model.ClassificationLogEntry {
	lines := readLines(h.path)
	entries := make([]model.ClassificationLogEntry, 0, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		var e model.ClassificationLogEntry
		if err := json.Unmarshal([]byte(lines[i]), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// RemoveByTimestamps rewrites the log without the entries whose
// timestamp field is in the given set.
func (h *HistoryLog) RemoveByTimestamps(timestamps map[string]bool) error {
	return h.writer.Rewrite(func(lines []string) []string {
		var surviving []string
		for _, line := range lines {
			var probe struct {
				Timestamp string `json:"timestamp"`
			}
			if err := json.Unmarshal([]byte(line), &probe); err != nil {
				continue
			}
			if timestamps[probe.Timestamp] {
				continue
			}
			surviving = append(surviving, line)
		}
		return surviving
	})
}

// Clear removes the whole log file.
func (h *HistoryLog) Clear() error {
	err := h.writer.Rewrite(func([]string) []string { return nil })
	if err != nil {
		return err
	}
	// An empty log and a missing log read the same; drop the file so a
	// cleared history leaves nothing behind.
	if rmErr := os.Remove(h.path); rmErr != nil && !os.IsNotExist(rmErr) {
		return rmErr
	}
	return nil
}

// Close flushes and stops the writer goroutine.
func (h *HistoryLog) Close() {
	h.writer.Close()
}
