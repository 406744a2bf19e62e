package validators

import (
	"testing"
	"time"

	"mercator-hq/underwriter/pkg/document"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   document.Value
		want string
		ok   bool
	}{
		{document.String("06-15-2025"), "2025-06-15", true},
		{document.String("2025-06-15"), "2025-06-15", true},
		{document.String("25-06-2025"), "2025-06-25", true},
		{document.String("06/15/2025"), "2025-06-15", true},
		{document.String("2025/06/15"), "2025-06-15", true},
		{document.String(" 2025-06-15 "), "2025-06-15", true},
		{document.String("June 15, 2025"), "2025-06-15", true},
		{document.String(""), "", false},
		{document.String("not a date"), "", false},
		{document.Null, "", false},
		{document.Sequence(document.String("2025-06-15")), "", false},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseDate(%v) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if tt.ok && got.Format("2006-01-02") != tt.want {
			t.Errorf("ParseDate(%v) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestMonthsAndDaysBetween(t *testing.T) {
	a := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	if got := MonthsBetween(a, b); got != 12 {
		t.Errorf("MonthsBetween(a, b) = %d, want 12", got)
	}
	if got := MonthsBetween(b, a); got != 12 {
		t.Errorf("MonthsBetween(b, a) = %d, want 12", got)
	}
	if got := DaysBetween(a, b); got != 336 {
		t.Errorf("DaysBetween(a, b) = %d, want 336", got)
	}
	if got := DaysBetween(b, a); got != 336 {
		t.Errorf("DaysBetween(b, a) = %d, want 336", got)
	}
	if got := MonthsBetween(a, a); got != 0 {
		t.Errorf("MonthsBetween(a, a) = %d, want 0", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"  12 Main St. ": "12 main st",
		"Apt #4B":        "apt 4b",
		"--":             "",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"subset of tokens", "Wells Fargo", "WELLS FARGO HOME MORTGAGE", 100},
		{"word order ignored", "fargo wells", "Wells Fargo", 100},
		{"empty side", "", "Wells Fargo", 0},
		{"single substitution costs two edits", "CENLAR", "CENTRAL", 61},
		{"half substituted", "abcdefghij", "abcdeVWXYZ", 50},
		{"shared prefix tokens", "Wells Fargo Bank", "Wells Fargo Mortgage", 81},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenSetRatio(tt.a, tt.b); got != tt.want {
				t.Errorf("TokenSetRatio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}

	if got := TokenSetRatio("Capital One Auto", "Wells Fargo Home Mortgage"); got >= defaultNameMatchScore {
		t.Errorf("unrelated creditors scored %d, want below %d", got, defaultNameMatchScore)
	}
}

func TestIsYes(t *testing.T) {
	tests := []struct {
		in   document.Value
		want bool
	}{
		{document.String(" YES "), true},
		{document.String("y"), true},
		{document.Bool(true), true},
		{document.Bool(false), false},
		{document.String("no"), false},
		{document.Null, false},
	}
	for _, tt := range tests {
		if got := isYes(tt.in); got != tt.want {
			t.Errorf("isYes(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
