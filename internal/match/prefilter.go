package match

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gumruklab/gtip/internal/model"
	"github.com/gumruklab/gtip/internal/text"
)

// BatchProduct is the descriptor the pre-filter extracts keywords from.
type BatchProduct struct {
	Name        string
	Ingredients []string
}

// NoTariffContextNote is returned instead of an empty context when the
// keyword set matches nothing, so downstream prompting never receives
// an empty context block silently.
const NoTariffContextNote = "No specific tax record was found for this product group. Reason from general chemistry knowledge."

// minKeywordLen drops short noise words ("ve", "and", units) from the
// keyword set.
const minKeywordLen = 3

// SelectRelevantTariffLines shrinks the tariff table to the lines that
// share at least one keyword with the batch, so a multi-thousand-line
// reference table is never forwarded to the model wholesale.
//
// Keywords are the union of alphanumeric tokens (length > 3) across
// every product name and ingredient in the batch. A tariff line is
// kept when any keyword occurs as a case-insensitive substring
// anywhere in it; the first maxLines hits are returned in file order.
// Substring-over-tokens is cheap and recall-friendly; false positives
// are an accepted trade-off.
func SelectRelevantTariffLines(products []BatchProduct, tariffPath string, maxLines int) []string {
	if maxLines <= 0 {
		maxLines = 50
	}

	keywords := make(map[string]struct{})
	for _, p := range products {
		blob := p.Name + " " + strings.Join(p.Ingredients, " ")
		for _, w := range text.Keywords(blob, minKeywordLen) {
			keywords[w] = struct{}{}
		}
	}

	f, err := os.Open(tariffPath)
	if err != nil {
		return []string{NoTariffContextNote}
	}
	defer func() { _ = f.Close() }()

	var relevant []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		lower := strings.ToLower(line)

		matched := false
		for k := range keywords {
			if strings.Contains(lower, k) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		var rec model.TariffRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		relevant = append(relevant, fmt.Sprintf("- %s (GTIP: %s)", rec.Description, rec.Code))

		if len(relevant) >= maxLines {
			break
		}
	}

	if len(relevant) == 0 {
		return []string{NoTariffContextNote}
	}
	return relevant
}
