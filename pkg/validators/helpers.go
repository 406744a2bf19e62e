package validators

import (
	"math"
	"strconv"
	"strings"

	"mercator-hq/underwriter/pkg/document"
)

// affirmative lists the answers treated as "yes" for borrower flags.
var affirmative = map[string]bool{"yes": true, "y": true, "true": true}

// number coerces v to a float64. Null and non-numeric values report false.
func number(v document.Value) (float64, bool) {
	if v.IsBlank() {
		return 0, false
	}
	f, err := v.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// integer coerces v to a whole number. Fractional numbers truncate toward
// zero; strings must spell an integer, so "1.5" reports false.
func integer(v document.Value) (int64, bool) {
	s, ok := v.Scalar()
	if !ok {
		return 0, false
	}
	switch n := s.(type) {
	case int64:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(math.Trunc(n)), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// text returns the trimmed, lowercased string form of v.
func text(v document.Value) string {
	return strings.ToLower(strings.TrimSpace(v.String()))
}

// isYes reports whether v is an affirmative flag such as "Yes", "Y" or true.
func isYes(v document.Value) bool {
	if b, ok := v.Scalar(); ok {
		if flag, isBool := b.(bool); isBool {
			return flag
		}
	}
	return affirmative[text(v)]
}

// raw converts v for inclusion in result details.
func raw(v document.Value) interface{} {
	return v.Interface()
}

// lastN returns the last n characters of s.
func lastN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// firstNonBlank returns the first non-blank value stored under one of keys.
func firstNonBlank(m document.Value, keys ...string) document.Value {
	for _, k := range keys {
		if v, ok := m.Get(k); ok && !v.IsBlank() {
			return v
		}
	}
	return document.Null
}
