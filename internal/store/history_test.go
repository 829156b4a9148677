package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gumruklab/gtip/internal/model"
)

func TestHistoryLog_NewestFirst(t *testing.T) {
	h := NewHistoryLog(filepath.Join(t.TempDir(), "search_history.jsonl"))
	defer h.Close()

	for _, ts := range []string{"2025-06-01 10:00:00", "2025-06-01 10:05:00", "2025-06-01 10:10:00"} {
		if err := h.Append(model.SearchLogEntry{Timestamp: ts, Query: "resin"}); err != nil {
			t.Fatal(err)
		}
	}

	entries := h.SearchEntries()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Timestamp != "2025-06-01 10:10:00" {
		t.Errorf("first entry = %s, want the newest", entries[0].Timestamp)
	}
	if entries[2].Timestamp != "2025-06-01 10:00:00" {
		t.Errorf("last entry = %s, want the oldest", entries[2].Timestamp)
	}
}

func TestHistoryLog_RemoveByTimestamps(t *testing.T) {
	h := NewHistoryLog(filepath.Join(t.TempDir(), "search_history.jsonl"))
	defer h.Close()

	for _, ts := range []string{"t1", "t2", "t3"} {
		if err := h.Append(model.SearchLogEntry{Timestamp: ts}); err != nil {
			t.Fatal(err)
		}
	}
	if err := h.RemoveByTimestamps(map[string]bool{"t2": true}); err != nil {
		t.Fatal(err)
	}

	entries := h.SearchEntries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries after removal", len(entries))
	}
	for _, e := range entries {
		if e.Timestamp == "t2" {
			t.Error("removed entry still present")
		}
	}
}

func TestHistoryLog_ClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classification_log.jsonl")
	h := NewHistoryLog(path)
	defer h.Close()

	if err := h.Append(model.ClassificationLogEntry{Timestamp: "t1", ProductName: "p"}); err != nil {
		t.Fatal(err)
	}
	if err := h.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected log file gone after clear")
	}
	if entries := h.ClassificationEntries(); len(entries) != 0 {
		t.Errorf("expected empty log after clear, got %d", len(entries))
	}
}

func TestHistoryLog_ClearEmptyLog(t *testing.T) {
	h := NewHistoryLog(filepath.Join(t.TempDir(), "search_history.jsonl"))
	defer h.Close()
	if err := h.Clear(); err != nil {
		t.Errorf("clear on never-written log: %v", err)
	}
}
