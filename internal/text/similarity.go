package text

import (
	"github.com/agnivade/levenshtein"
)

// Ratio computes a bounded similarity between two strings in [0,1]
// from their edit distance: 1 - distance/maxLen. Identical strings
// score 1.0; two empty strings are defined as identical. The value is
// a relative ranking signal, not a probability — callers compare it
// against tuned thresholds only.
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}

	la := len([]rune(a))
	lb := len([]rune(b))
	max := la
	if lb > max {
		max = lb
	}
	if max == 0 {
		return 1.0
	}

	dist := levenshtein.ComputeDistance(a, b)
	if dist > max {
		dist = max
	}
	return 1.0 - float64(dist)/float64(max)
}
