package pipeline

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/gumruklab/gtip/internal/llm"
	"github.com/gumruklab/gtip/internal/model"
	"github.com/gumruklab/gtip/internal/store"
)

func newTestSearcher(t *testing.T, provider llm.Provider) (*Searcher, *store.CaseStore, *store.HistoryLog) {
	t.Helper()
	cfg := testConfig(t)
	cases := store.NewCaseStore(cfg.Storage.CasesFile)
	t.Cleanup(cases.Close)
	searchLog := store.NewHistoryLog(cfg.Storage.SearchLogFile)
	t.Cleanup(searchLog.Close)
	tariff := store.NewTariffStore(cfg.Storage.TariffFile, cfg.Storage.TariffMetaFile)

	s := NewSearcher(cfg, cases, tariff, searchLog, provider, zap.NewNop().Sugar())
	return s, cases, searchLog
}

func TestSearcher_SearchLogsQuery(t *testing.T) {
	s, cases, searchLog := newTestSearcher(t, nil)

	if err := cases.Append(model.Case{ID: "1", ProductName: "Rheobyk-431", AssignedCode: "3824.99.96.99.68"}); err != nil {
		t.Fatal(err)
	}
	if err := cases.Append(model.Case{ID: "2", ProductName: "Disponil FES 32", AssignedCode: "3402.42.00.00.00"}); err != nil {
		t.Fatal(err)
	}

	ranked, summary := s.Search("rheobyk", 5)
	if len(ranked) != 1 || ranked[0].ProductName != "Rheobyk-431" {
		t.Fatalf("unexpected ranking: %+v", ranked)
	}
	if summary == "" {
		t.Error("expected a summary string")
	}

	entries := searchLog.SearchEntries()
	if len(entries) != 1 {
		t.Fatalf("search log holds %d entries, want 1", len(entries))
	}
	if entries[0].Query != "rheobyk" {
		t.Errorf("logged query = %q", entries[0].Query)
	}
	if len(entries[0].FullResults) != 1 {
		t.Errorf("logged results = %+v", entries[0].FullResults)
	}
}

func TestSearcher_NoMatchStillLogged(t *testing.T) {
	s, _, searchLog := newTestSearcher(t, nil)

	ranked, summary := s.Search("nonexistent product", 5)
	if len(ranked) != 0 {
		t.Errorf("expected no results, got %d", len(ranked))
	}
	if summary != "No matching case found." {
		t.Errorf("summary = %q", summary)
	}
	if entries := searchLog.SearchEntries(); len(entries) != 1 {
		t.Errorf("search log holds %d entries, want 1", len(entries))
	}
}

func TestSearcher_AskExpert(t *testing.T) {
	s, cases, _ := newTestSearcher(t, &stubProvider{})

	if err := cases.Append(model.Case{ID: "1", ProductName: "Rheobyk-431", AssignedCode: "3824.99.96.99.68", ShortReason: "additive"}); err != nil {
		t.Fatal(err)
	}

	advice, err := s.AskExpert(context.Background(), "how to classify rheobyk thickeners", nil)
	if err != nil {
		t.Fatal(err)
	}
	if advice.Text != "grounded opinion" {
		t.Errorf("advice = %q", advice.Text)
	}
}

func TestSearcher_AskExpertWithoutProvider(t *testing.T) {
	s, _, _ := newTestSearcher(t, nil)
	if _, err := s.AskExpert(context.Background(), "question", nil); err == nil {
		t.Error("expected error without a provider")
	}
}
