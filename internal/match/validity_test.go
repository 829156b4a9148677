package match

import (
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestClassifyValidity(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Validity
	}{
		{"far future", "2029-12-31", ValidityOK},
		{"inside critical window", "2025-12-31", ValidityCritical},
		{"past", "2020-01-01", ValidityExpired},
		{"day month year form", "31/12/2029", ValidityOK},
		{"with time component", "2025-12-31 00:00:00", ValidityCritical},
		{"decorated", "**2029-12-31**", ValidityOK},
		{"sentinel dash", "-", ValidityUnknown},
		{"sentinel nan", "nan", ValidityUnknown},
		{"empty", "", ValidityUnknown},
		{"garbage", "next tuesday", ValidityUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ClassifyValidity(tt.raw, fixedNow)
			if got != tt.want {
				t.Errorf("ClassifyValidity(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFormatValidity_PlainDateWhenOK(t *testing.T) {
	got := FormatValidity("2029-12-31", fixedNow)
	if got != "2029-12-31" {
		t.Errorf("got %q, want plain date", got)
	}
}

func TestFormatValidity_CriticalMarker(t *testing.T) {
	got := FormatValidity("2025-12-31", fixedNow)
	if !strings.Contains(got, "2025-12-31") || !strings.Contains(got, "CRITICAL") {
		t.Errorf("expected critical marker with date, got %q", got)
	}
}

func TestFormatValidity_ExpiredMarker(t *testing.T) {
	got := FormatValidity("2020-01-01", fixedNow)
	if !strings.Contains(got, "EXPIRED") || !strings.Contains(got, "2020-01-01") {
		t.Errorf("expected expired marker with date, got %q", got)
	}
}

func TestFormatValidity_Sentinels(t *testing.T) {
	for _, raw := range []string{"", "-", "nan", "NaN"} {
		if got := FormatValidity(raw, fixedNow); got != "-" {
			t.Errorf("FormatValidity(%q) = %q, want \"-\"", raw, got)
		}
	}
}

func TestFormatValidity_NormalizesDayMonthYear(t *testing.T) {
	got := FormatValidity("31/12/2029", fixedNow)
	if got != "2029-12-31" {
		t.Errorf("got %q, want ISO-rendered date", got)
	}
}

func TestFormatValidity_UnparseableDegradesGracefully(t *testing.T) {
	got := FormatValidity("Q4/2029 13:00:00", fixedNow)
	if got != "Q4/2029" {
		t.Errorf("got %q, want the original minus the time part", got)
	}
}

func TestValidityString(t *testing.T) {
	tests := []struct {
		v    Validity
		want string
	}{
		{ValidityOK, "ok"},
		{ValidityCritical, "critical"},
		{ValidityExpired, "expired"},
		{ValidityUnknown, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}
