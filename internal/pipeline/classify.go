package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gumruklab/gtip/internal/llm"
	"github.com/gumruklab/gtip/internal/match"
	"github.com/gumruklab/gtip/internal/model"
	"github.com/gumruklab/gtip/internal/store"
	"github.com/gumruklab/gtip/internal/worker"
)

// Classifier runs datasheet classification batches: each document goes
// to the LLM with pre-filtered tariff lines and ranked precedent
// context, and accepted results land in the case store.
type Classifier struct {
	cfg      model.Config
	provider llm.Provider
	tariff   *store.TariffStore
	cases    *store.CaseStore
	classLog *store.HistoryLog
	limiter  *worker.Limiter
	log      *zap.SugaredLogger
}

// NewClassifier wires a classifier over the given stores and provider.
func NewClassifier(cfg model.Config, provider llm.Provider, tariff *store.TariffStore, cases *store.CaseStore, classLog *store.HistoryLog, log *zap.SugaredLogger) *Classifier {
	return &Classifier{
		cfg:      cfg,
		provider: provider,
		tariff:   tariff,
		cases:    cases,
		classLog: classLog,
		limiter:  worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize),
		log:      log,
	}
}

// DocumentInput is one datasheet to classify.
type DocumentInput struct {
	Path      string
	Documents []llm.Document
}

// ClassifyOutcome is the per-document result of a batch run.
type ClassifyOutcome struct {
	Input DocumentInput
	Case  model.Case
	Err   error
}

// GetError implements worker.Result.
func (o *ClassifyOutcome) GetError() error { return o.Err }

// ClassifyBatch classifies documents on the configured worker pool and
// appends successful results to the case store. Outcomes come back in
// completion order.
func (c *Classifier) ClassifyBatch(ctx context.Context, inputs []DocumentInput) []ClassifyOutcome {
	if c.provider == nil {
		outcomes := make([]ClassifyOutcome, len(inputs))
		for i, in := range inputs {
			outcomes[i] = ClassifyOutcome{Input: in, Err: fmt.Errorf("no LLM provider configured")}
		}
		return outcomes
	}

	precedents := c.cases.LoadAll()

	pool := worker.NewPool(c.cfg.Concurrency.Workers)
	pool.Start()

	// Submit concurrently with the drain below: the pool's channels
	// hold only a few jobs, so a batch larger than that would wedge
	// Submit if nothing received results in the meantime.
	go func() {
		for _, in := range inputs {
			pool.Submit(&classifyJob{classifier: c, input: in, precedents: precedents, parent: ctx})
		}
		pool.Close()
	}()

	results := pool.Wait()
	outcomes := make([]ClassifyOutcome, 0, len(results))
	for _, r := range results {
		if o, ok := r.(*ClassifyOutcome); ok {
			outcomes = append(outcomes, *o)
		}
	}
	return outcomes
}

type classifyJob struct {
	classifier *Classifier
	input      DocumentInput
	precedents []model.Case
	parent     context.Context
}

// Execute implements worker.Job.
func (j *classifyJob) Execute(ctx context.Context) worker.Result {
	c := j.classifier
	outcome := &ClassifyOutcome{Input: j.input}

	// Pool context ends the run on Shutdown; the parent carries the
	// caller's deadline.
	callCtx := j.parent
	if callCtx == nil {
		callCtx = ctx
	}

	if err := c.limiter.Wait(callCtx, c.provider.Name()); err != nil {
		outcome.Err = fmt.Errorf("rate limit wait: %w", err)
		return outcome
	}

	queryName := documentQueryName(j.input.Path)
	tariffContext := strings.Join(match.SelectRelevantTariffLines(
		[]match.BatchProduct{{Name: queryName}},
		c.tariff.Path(),
		c.cfg.Match.MaxContextLines,
	), "\n")

	ranked, _ := match.RankCases(queryName, j.precedents, 3, c.cfg.Match)
	precedentContext := llm.RenderPrecedents(ranked)

	c.log.Debugw("classifying document", "path", j.input.Path, "provider", c.provider.Name())

	classification, err := c.provider.Classify(callCtx, llm.ClassifyRequest{
		Documents:        j.input.Documents,
		TariffContext:    tariffContext,
		PrecedentContext: precedentContext,
	})
	if err != nil {
		c.log.Warnw("classification failed", "path", j.input.Path, "error", err)
		outcome.Err = fmt.Errorf("classify %s: %w", filepath.Base(j.input.Path), err)
		return outcome
	}

	now := time.Now()
	newCase := caseFromClassification(j.input, classification, now)
	if err := c.cases.Append(newCase); err != nil {
		outcome.Err = fmt.Errorf("store case for %s: %w", filepath.Base(j.input.Path), err)
		return outcome
	}

	if err := c.classLog.Append(model.ClassificationLogEntry{
		Timestamp:   now.Format("2006-01-02 15:04:05"),
		Filename:    filepath.Base(j.input.Path),
		ProductName: classification.ProductName,
		Composition: classification.CompositionText,
		Response:    classification.Raw,
	}); err != nil {
		c.log.Warnw("classification log append failed", "error", err)
	}

	c.log.Infow("document classified",
		"path", j.input.Path,
		"product", classification.ProductName,
		"code", classification.SuggestedCode)

	outcome.Case = newCase
	return outcome
}

// caseFromClassification turns an accepted LLM reply into a stored
// precedent.
func caseFromClassification(in DocumentInput, cl *llm.Classification, now time.Time) model.Case {
	return model.Case{
		ID:              caseID(in, now),
		ProductName:     cl.ProductName,
		Brand:           cl.Brand,
		AssignedCode:    cl.SuggestedCode,
		AssignedBy:      "llm",
		AssignmentDate:  now.Format("2006-01-02"),
		SourceType:      "pdf_image",
		SourcePath:      in.Path,
		CompositionText: cl.CompositionText,
		Features:        cl.Features,
		Tags:            cl.Tags,
		ShortReason:     cl.ShortReason,
		VersionDate:     now.Format("2006-01-02"),
	}
}

// caseID derives a stable-length unique ID from the document contents
// and the classification time.
func caseID(in DocumentInput, now time.Time) string {
	h := sha256.New()
	h.Write([]byte(in.Path))
	for _, d := range in.Documents {
		h.Write(d.Data)
	}
	return fmt.Sprintf("case-%s-%s", now.UTC().Format("20060102150405"), hex.EncodeToString(h.Sum(nil))[:8])
}

// documentQueryName strips the path and extension so the file name can
// seed the tariff pre-filter and precedent ranking.
func documentQueryName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadDocuments loads the given files as LLM attachments, inferring
// the MIME type from the extension.
func ReadDocuments(paths []string) ([]llm.Document, error) {
	var docs []llm.Document
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		docs = append(docs, llm.Document{
			Name: filepath.Base(path),
			MIME: documentMIME(path),
			Data: data,
		})
	}
	return docs, nil
}

func documentMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "text/plain"
	}
}
