package match

import (
	"math"
	"strings"

	"github.com/gumruklab/gtip/internal/model"
	"github.com/gumruklab/gtip/internal/text"
)

// CleanCAS strips parentheses and surrounding whitespace from a raw
// CAS identifier ("(848)" -> "848").
func CleanCAS(cas string) string {
	cas = strings.ReplaceAll(cas, "(", "")
	cas = strings.ReplaceAll(cas, ")", "")
	return strings.TrimSpace(cas)
}

// validCAS reports whether a cleaned CAS string is usable for numeric
// matching. Degenerate numbers like "2" or "3" would match everything,
// so anything short or hyphen-less is rejected.
func validCAS(clean string) bool {
	return len(clean) > 4 && strings.Contains(clean, "-")
}

// containsNumericToken reports whether token occurs in s with digit
// boundaries on both sides: not immediately preceded or followed by
// another digit. "77-99-6" must not match inside "157577-99-6".
func containsNumericToken(s, token string) bool {
	if token == "" {
		return false
	}
	for start := 0; start <= len(s)-len(token); {
		i := strings.Index(s[start:], token)
		if i < 0 {
			return false
		}
		i += start
		beforeOK := i == 0 || !isDigit(s[i-1])
		end := i + len(token)
		afterOK := end >= len(s) || !isDigit(s[end])
		if beforeOK && afterOK {
			return true
		}
		start = i + 1
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// FindTaxRecord finds the tariff record for a chemical by CAS number
// first, falling back to name containment. A nil result means "no
// match" and is a normal outcome, not an error.
//
// CAS equality is authoritative: the number is the only globally
// unambiguous identifier available, so a CAS hit stops the scan and a
// name match may never pre-empt it. Name matching only fires for names
// longer than 3 characters to keep noisy short strings from matching.
func FindTaxRecord(casNumber, productName string, records []model.TariffRecord) *model.TariffRecord {
	cleanCAS := CleanCAS(casNumber)

	if validCAS(cleanCAS) {
		for i := range records {
			if containsNumericToken(records[i].Description, cleanCAS) {
				return &records[i]
			}
		}
	}

	name := strings.ToLower(strings.TrimSpace(productName))
	if len(name) > 3 {
		for i := range records {
			if strings.Contains(strings.ToLower(records[i].Description), name) {
				return &records[i]
			}
		}
	}

	return nil
}

// Scored-variant weights. CAS containment dominates and short-circuits
// the scan; name signals only compete with each other.
const (
	casMatchScore        = 100
	nameContainmentScore = 60
	similarityScoreScale = 50
)

// ScoreTaxMatch scans the whole tariff table and returns the single
// highest-scoring record above cfg.ScoreFloor, with its score, or
// (nil, 0) when nothing qualifies. Used for ad-hoc single lookups
// where a ranked best-effort answer beats a strict boundary match.
func ScoreTaxMatch(casNumber, productName string, records []model.TariffRecord, cfg model.MatchConfig) (*model.TariffRecord, int) {
	cleanCAS := CleanCAS(casNumber)
	useCAS := validCAS(cleanCAS)
	name := strings.ToLower(strings.TrimSpace(productName))

	var best *model.TariffRecord
	highest := 0

	for i := range records {
		desc := strings.ToLower(records[i].Description)
		score := 0

		switch {
		case useCAS && strings.Contains(desc, cleanCAS):
			score = casMatchScore
		case name != "":
			if strings.Contains(desc, name) {
				score = nameContainmentScore
			} else if ratio := text.Ratio(name, desc); ratio > cfg.TariffRatioThreshold {
				score = int(math.Round(ratio * similarityScoreScale))
			}
		}

		if score > highest && score > cfg.ScoreFloor {
			highest = score
			best = &records[i]
			if score >= casMatchScore {
				break
			}
		}
	}

	return best, highest
}
