package text

import (
	"strings"
	"unicode"
)

// Normalize strips every character that is not a letter or digit and
// lower-cases the remainder. It neutralizes punctuation and spacing
// differences before containment checks, so "Rheobyk-431" and
// "rheobyk431" compare equal.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Keywords extracts lower-cased alphanumeric word tokens longer than
// minLen runes. Short tokens (conjunctions, units) are dropped because
// they match everything.
func Keywords(s string, minLen int) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > minLen {
			words = append(words, string(cur))
		}
		cur = cur[:0]
	}
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			cur = append(cur, r)
			continue
		}
		flush()
	}
	flush()
	return words
}
