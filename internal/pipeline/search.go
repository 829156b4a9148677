package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gumruklab/gtip/internal/llm"
	"github.com/gumruklab/gtip/internal/match"
	"github.com/gumruklab/gtip/internal/model"
	"github.com/gumruklab/gtip/internal/store"
)

// Searcher ranks case precedents for a query and records every search
// in the history log.
type Searcher struct {
	cfg       model.Config
	cases     *store.CaseStore
	tariff    *store.TariffStore
	searchLog *store.HistoryLog
	provider  llm.Provider
	log       *zap.SugaredLogger
}

// NewSearcher wires a searcher. provider may be nil; AskExpert then
// reports the LLM as unconfigured.
func NewSearcher(cfg model.Config, cases *store.CaseStore, tariff *store.TariffStore, searchLog *store.HistoryLog, provider llm.Provider, log *zap.SugaredLogger) *Searcher {
	return &Searcher{
		cfg:       cfg,
		cases:     cases,
		tariff:    tariff,
		searchLog: searchLog,
		provider:  provider,
		log:       log,
	}
}

// Search ranks the stored cases against query and logs the search.
func (s *Searcher) Search(query string, limit int) ([]model.Case, string) {
	cases := s.cases.LoadAll()
	ranked, summary := match.RankCases(query, cases, limit, s.cfg.Match)

	if err := s.searchLog.Append(model.SearchLogEntry{
		Timestamp:      time.Now().Format("2006-01-02 15:04:05"),
		Query:          query,
		SummaryResults: summary,
		FullResults:    ranked,
	}); err != nil {
		s.log.Warnw("search log append failed", "error", err)
	}

	s.log.Debugw("search ranked", "query", query, "results", len(ranked))
	return ranked, summary
}

// AskExpert asks the LLM a free-form classification question grounded
// on the closest precedents and the relevant tariff lines.
func (s *Searcher) AskExpert(ctx context.Context, question string, docs []llm.Document) (*llm.Advice, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}

	ranked, _ := match.RankCases(question, s.cases.LoadAll(), 3, s.cfg.Match)

	tariffLines := match.SelectRelevantTariffLines(
		[]match.BatchProduct{{Name: question}},
		s.tariff.Path(),
		s.cfg.Match.MaxContextLines,
	)

	return s.provider.Advise(ctx, llm.AdviseRequest{
		Question:         question,
		Documents:        docs,
		TariffContext:    strings.Join(tariffLines, "\n"),
		PrecedentContext: llm.RenderPrecedents(ranked),
	})
}
