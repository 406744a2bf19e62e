package validators

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"mercator-hq/underwriter/pkg/document"
)

// dateLayouts are tried in order before the flexible parser. Loan
// origination exports use month-first dashes.
var dateLayouts = []string{
	"01-02-2006",
	"2006-01-02",
	"02-01-2006",
	"01/02/2006",
	"2006/01/02",
}

// ParseDate parses a document date. Blank values and unparseable text
// report false.
func ParseDate(v document.Value) (time.Time, bool) {
	if v.IsBlank() || v.Kind() != document.KindScalar {
		return time.Time{}, false
	}
	return parseDateString(v.String())
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MonthsBetween returns the absolute calendar-month difference between a
// and b, ignoring the day of month.
func MonthsBetween(a, b time.Time) int {
	months := (b.Year()-a.Year())*12 + int(b.Month()-a.Month())
	if months < 0 {
		return -months
	}
	return months
}

// DaysBetween returns the absolute number of whole days between a and b.
func DaysBetween(a, b time.Time) int {
	d := b.Sub(a)
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}
