package match

import (
	"strings"
	"time"
)

// Validity classifies how much life a tariff record's stated rate has
// left.
type Validity int

const (
	ValidityUnknown Validity = iota // unparseable or sentinel date
	ValidityOK
	ValidityCritical // fewer than 365 days remaining
	ValidityExpired
)

func (v Validity) String() string {
	switch v {
	case ValidityOK:
		return "ok"
	case ValidityCritical:
		return "critical"
	case ValidityExpired:
		return "expired"
	default:
		return "unknown"
	}
}

const displayDateLayout = "2006-01-02"

// Date layouts tried in order: day/month/year as the government sheet
// usually has it, then year-month-day as spreadsheets export it.
var validityLayouts = []string{"02/01/2006", "2006-01-02"}

// criticalWindow is the remaining-life span below which a record is
// flagged for review.
const criticalWindow = 365 * 24 * time.Hour

// ClassifyValidity parses a flexible textual date and classifies the
// record's remaining validity against now. The returned time is the
// parsed expiry (zero when Unknown). Never fails: unparseable input
// classifies as Unknown.
func ClassifyValidity(raw string, now time.Time) (Validity, time.Time) {
	datePart, ok := cleanDatePart(raw)
	if !ok {
		return ValidityUnknown, time.Time{}
	}

	var expiry time.Time
	var err error
	for _, layout := range validityLayouts {
		expiry, err = time.Parse(layout, datePart)
		if err == nil {
			break
		}
	}
	if err != nil {
		return ValidityUnknown, time.Time{}
	}

	switch {
	case expiry.Before(now):
		return ValidityExpired, expiry
	case expiry.Sub(now) < criticalWindow:
		return ValidityCritical, expiry
	default:
		return ValidityOK, expiry
	}
}

// FormatValidity renders the display string for a raw validity date:
// sentinel inputs pass through as "-", expired and critical records
// get a marker prefix, everything else is the plain formatted date.
// Unparseable dates degrade to the original text with any time-of-day
// component stripped. Consumers must treat the result as an opaque
// label; structured consumers use ClassifyValidity instead.
func FormatValidity(raw string, now time.Time) string {
	datePart, ok := cleanDatePart(raw)
	if !ok {
		return "-"
	}

	validity, expiry := ClassifyValidity(raw, now)
	switch validity {
	case ValidityExpired:
		return "⚫ " + expiry.Format(displayDateLayout) + " (EXPIRED)"
	case ValidityCritical:
		return "🔴 " + expiry.Format(displayDateLayout) + " (CRITICAL - <1 YR)"
	case ValidityOK:
		return expiry.Format(displayDateLayout)
	default:
		// Best effort: show what we got, minus the time component.
		return datePart
	}
}

// AnnotateValidity is FormatValidity against the current moment.
func AnnotateValidity(raw string) string {
	return FormatValidity(raw, time.Now())
}

// cleanDatePart strips decorative markup and the time-of-day component
// ("**2025-12-31 00:00:00**" -> "2025-12-31"). Reports false for the
// sentinel inputs meaning "no date".
func cleanDatePart(raw string) (string, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "**", ""))
	if s == "" || s == "-" || strings.EqualFold(s, "nan") {
		return "", false
	}
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	return s, true
}
