package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/gumruklab/gtip/internal/llm"
	"github.com/gumruklab/gtip/internal/model"
	"github.com/gumruklab/gtip/internal/store"
)

// stubProvider returns a canned classification derived from the
// request, or a fixed error.
type stubProvider struct {
	err error
}

func (s *stubProvider) Name() string                         { return "stub" }
func (s *stubProvider) IsAvailable(ctx context.Context) bool { return true }

func (s *stubProvider) Classify(ctx context.Context, req llm.ClassifyRequest) (*llm.Classification, error) {
	if s.err != nil {
		return nil, s.err
	}
	name := "unknown"
	if len(req.Documents) > 0 {
		name = req.Documents[0].Name
	}
	return &llm.Classification{
		ProductName:   name,
		SuggestedCode: "3824.99.96.99.68",
		ShortReason:   "additive preparation",
		Raw:           "{}",
	}, nil
}

func (s *stubProvider) Advise(ctx context.Context, req llm.AdviseRequest) (*llm.Advice, error) {
	return &llm.Advice{Text: "grounded opinion"}, nil
}

func (s *stubProvider) ExtractProducts(ctx context.Context, req llm.ExtractRequest) ([]llm.ExtractedProduct, error) {
	return nil, nil
}

func testConfig(t *testing.T) model.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := model.DefaultConfig()
	cfg.Storage.DataDir = dir
	cfg.Storage.TariffFile = filepath.Join(dir, "tariff.jsonl")
	cfg.Storage.TariffMetaFile = filepath.Join(dir, "tariff_meta.json")
	cfg.Storage.CasesFile = filepath.Join(dir, "cases.jsonl")
	cfg.Storage.SearchLogFile = filepath.Join(dir, "search_history.jsonl")
	cfg.Storage.ClassificationLogFile = filepath.Join(dir, "classification_log.jsonl")
	cfg.Storage.ReportDir = filepath.Join(dir, "reports")
	cfg.Concurrency.Workers = 2
	cfg.RateLimit.RequestsPerSecond = 1000
	cfg.RateLimit.BurstSize = 1000
	return cfg
}

func TestClassifier_BatchAppendsCases(t *testing.T) {
	cfg := testConfig(t)
	tariff := store.NewTariffStore(cfg.Storage.TariffFile, cfg.Storage.TariffMetaFile)
	cases := store.NewCaseStore(cfg.Storage.CasesFile)
	defer cases.Close()
	classLog := store.NewHistoryLog(cfg.Storage.ClassificationLogFile)
	defer classLog.Close()

	c := NewClassifier(cfg, &stubProvider{}, tariff, cases, classLog, zap.NewNop().Sugar())

	var inputs []DocumentInput
	for i := 0; i < 4; i++ {
		name := fmt.Sprintf("sheet-%d.png", i)
		inputs = append(inputs, DocumentInput{
			Path:      filepath.Join("/docs", name),
			Documents: []llm.Document{{Name: name, MIME: "image/png", Data: []byte(name)}},
		})
	}

	outcomes := c.ClassifyBatch(context.Background(), inputs)
	if len(outcomes) != 4 {
		t.Fatalf("got %d outcomes, want 4", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Err != nil {
			t.Errorf("outcome for %s: %v", o.Input.Path, o.Err)
		}
		if o.Case.AssignedCode != "3824.99.96.99.68" || o.Case.AssignedBy != "llm" {
			t.Errorf("unexpected case: %+v", o.Case)
		}
	}

	stored := cases.LoadAll()
	if len(stored) != 4 {
		t.Fatalf("case store holds %d cases, want 4", len(stored))
	}
	seen := map[string]bool{}
	for _, c := range stored {
		if seen[c.ID] {
			t.Errorf("duplicate case ID %s", c.ID)
		}
		seen[c.ID] = true
	}

	entries := classLog.ClassificationEntries()
	if len(entries) != 4 {
		t.Errorf("classification log holds %d entries, want 4", len(entries))
	}
}

func TestClassifier_LargeBatchCompletes(t *testing.T) {
	cfg := testConfig(t)
	tariff := store.NewTariffStore(cfg.Storage.TariffFile, cfg.Storage.TariffMetaFile)
	cases := store.NewCaseStore(cfg.Storage.CasesFile)
	defer cases.Close()
	classLog := store.NewHistoryLog(cfg.Storage.ClassificationLogFile)
	defer classLog.Close()

	c := NewClassifier(cfg, &stubProvider{}, tariff, cases, classLog, zap.NewNop().Sugar())

	// Many times the pool's channel capacity at 2 workers, so the run
	// only finishes if results drain while documents are still being
	// submitted.
	count := 30
	var inputs []DocumentInput
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("sheet-%d.png", i)
		inputs = append(inputs, DocumentInput{
			Path:      filepath.Join("/docs", name),
			Documents: []llm.Document{{Name: name, MIME: "image/png", Data: []byte(name)}},
		})
	}

	done := make(chan []ClassifyOutcome, 1)
	go func() {
		done <- c.ClassifyBatch(context.Background(), inputs)
	}()

	select {
	case outcomes := <-done:
		if len(outcomes) != count {
			t.Fatalf("got %d outcomes, want %d", len(outcomes), count)
		}
		for _, o := range outcomes {
			if o.Err != nil {
				t.Errorf("outcome for %s: %v", o.Input.Path, o.Err)
			}
		}
		if stored := cases.LoadAll(); len(stored) != count {
			t.Errorf("case store holds %d cases, want %d", len(stored), count)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("batch classification blocked")
	}
}

func TestClassifier_ProviderErrorDoesNotStore(t *testing.T) {
	cfg := testConfig(t)
	tariff := store.NewTariffStore(cfg.Storage.TariffFile, cfg.Storage.TariffMetaFile)
	cases := store.NewCaseStore(cfg.Storage.CasesFile)
	defer cases.Close()
	classLog := store.NewHistoryLog(cfg.Storage.ClassificationLogFile)
	defer classLog.Close()

	c := NewClassifier(cfg, &stubProvider{err: fmt.Errorf("quota exceeded")}, tariff, cases, classLog, zap.NewNop().Sugar())

	outcomes := c.ClassifyBatch(context.Background(), []DocumentInput{
		{Path: "sheet.png", Documents: []llm.Document{{Name: "sheet.png", MIME: "image/png", Data: []byte{1}}}},
	})
	if len(outcomes) != 1 || outcomes[0].Err == nil {
		t.Fatalf("expected failing outcome, got %+v", outcomes)
	}
	if stored := cases.LoadAll(); len(stored) != 0 {
		t.Errorf("failed classification must not be stored, found %d cases", len(stored))
	}
}

func TestClassifier_NilProvider(t *testing.T) {
	cfg := testConfig(t)
	tariff := store.NewTariffStore(cfg.Storage.TariffFile, cfg.Storage.TariffMetaFile)
	cases := store.NewCaseStore(cfg.Storage.CasesFile)
	defer cases.Close()
	classLog := store.NewHistoryLog(cfg.Storage.ClassificationLogFile)
	defer classLog.Close()

	c := NewClassifier(cfg, nil, tariff, cases, classLog, zap.NewNop().Sugar())
	outcomes := c.ClassifyBatch(context.Background(), []DocumentInput{{Path: "x.png"}})
	if len(outcomes) != 1 || outcomes[0].Err == nil {
		t.Error("expected configuration error outcome")
	}
}

func TestDocumentMIME(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"sheet.PNG", "image/png"},
		{"scan.jpeg", "image/jpeg"},
		{"scan.jpg", "image/jpeg"},
		{"notes.txt", "text/plain"},
	}
	for _, tt := range tests {
		if got := documentMIME(tt.path); got != tt.want {
			t.Errorf("documentMIME(%s) = %s, want %s", tt.path, got, tt.want)
		}
	}
}
