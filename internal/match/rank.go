package match

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gumruklab/gtip/internal/model"
	"github.com/gumruklab/gtip/internal/text"
)

// Per-signal weights for case search. Empirically tuned; relative
// ranking signals only, never persisted.
const (
	nameOverlapScore    = 40 // normalized query <-> normalized product name containment, either direction
	codeOverlapScore    = 50 // normalized query inside normalized assigned code
	termInNameScore     = 15 // raw term inside lower-cased product name
	termInCompScore     = 5  // raw term inside lower-cased composition text
	termNormalizedScore = 10 // normalized term inside normalized product name
	similarityWeight    = 20
)

// ScoredCase pairs a case with its ranking score.
type ScoredCase struct {
	Case  model.Case
	Score int
}

// RankCases scores every stored case against a free-text query and
// returns the top limit matches (descending score, stable among ties)
// plus a human-readable summary. An empty result is a normal outcome,
// signalled via the summary message.
func RankCases(query string, cases []model.Case, limit int, cfg model.MatchConfig) ([]model.Case, string) {
	scored := scoreCases(query, cases, cfg)
	total := len(scored)

	if limit <= 0 {
		limit = 5
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}

	top := make([]model.Case, len(scored))
	for i, s := range scored {
		top[i] = s.Case
	}

	if len(top) == 0 {
		return nil, "No matching case found."
	}
	return top, fmt.Sprintf("%d records matched, showing the %d most relevant.", total, len(top))
}

// scoreCases computes the per-case additive score and drops everything
// at or below zero. Sort is stable so equal scores keep their original
// encounter order.
func scoreCases(query string, cases []model.Case, cfg model.MatchConfig) []ScoredCase {
	queryRaw := strings.ToLower(strings.TrimSpace(query))
	queryNorm := text.Normalize(query)
	queryTerms := strings.Fields(queryRaw)

	var results []ScoredCase
	for _, c := range cases {
		score := 0

		nameLower := strings.ToLower(c.ProductName)
		nameNorm := text.Normalize(c.ProductName)
		codeNorm := text.Normalize(c.AssignedCode)
		comp := strings.ToLower(c.CompositionText)

		if queryNorm != "" && (strings.Contains(nameNorm, queryNorm) || strings.Contains(queryNorm, nameNorm)) {
			score += nameOverlapScore
		}
		if queryNorm != "" && strings.Contains(codeNorm, queryNorm) {
			score += codeOverlapScore
		}

		for _, term := range queryTerms {
			switch {
			case strings.Contains(nameLower, term):
				score += termInNameScore
			case strings.Contains(comp, term):
				score += termInCompScore
			case strings.Contains(nameNorm, text.Normalize(term)):
				score += termNormalizedScore
			}
		}

		if ratio := text.Ratio(queryRaw, nameLower); ratio > cfg.CaseRatioThreshold {
			score += int(math.Round(ratio * similarityWeight))
		}

		if score > 0 {
			results = append(results, ScoredCase{Case: c, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}
