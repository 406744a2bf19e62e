package engine

import (
	"strconv"
	"strings"

	"mercator-hq/underwriter/pkg/document"
	"mercator-hq/underwriter/pkg/fields"
	"mercator-hq/underwriter/pkg/rules"
)

const (
	// AnySentinel matches any non-empty value. Compared case-insensitively.
	AnySentinel = "ANY"

	thresholdPrefix = "GT"
)

// Interpreter decides whether a rule's trigger matches a context.
// It never fails: malformed predicates degrade to a non-match.
type Interpreter struct {
	resolver *fields.Resolver
}

// NewInterpreter creates a trigger interpreter that reads fields through
// resolver.
func NewInterpreter(resolver *fields.Resolver) *Interpreter {
	if resolver == nil {
		resolver = fields.NewResolver(nil)
	}
	return &Interpreter{resolver: resolver}
}

// IsTriggered reports whether rule applies to c.
//
// OR blocks are evaluated first; when present and none matches, the
// remaining checks are skipped. Every top-level check must then match.
// A trigger with no predicates always matches.
func (in *Interpreter) IsTriggered(rule *rules.Rule, c document.Context) bool {
	t := rule.Trigger

	if len(t.Or) > 0 {
		matched := false
		for _, block := range t.Or {
			if in.matchBlock(block, c) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return in.matchBlock(t.All, c)
}

func (in *Interpreter) matchBlock(block rules.Block, c document.Context) bool {
	for _, check := range block {
		if !in.Check(check, c) {
			return false
		}
	}
	return true
}

// Check evaluates a single-field predicate. Sources are scanned in priority
// order and only the first source with a non-blank value is compared.
func (in *Interpreter) Check(check rules.Check, c document.Context) bool {
	for _, source := range document.Priority {
		v := in.resolver.Resolve(c, source, check.Field)
		if v.IsBlank() {
			continue
		}
		return matchAllowed(v, check.Allowed)
	}
	return false
}

func matchAllowed(v document.Value, allowed []document.Value) bool {
	for _, a := range allowed {
		if isAny(a) {
			return true
		}
	}

	for _, a := range allowed {
		if threshold, ok := parseThreshold(a); ok {
			pct, err := Percent(v)
			if err == nil && pct > threshold {
				return true
			}
			continue
		}

		want := strings.TrimSpace(a.String())
		if v.Kind() == document.KindSequence {
			for _, item := range v.Items() {
				if strings.TrimSpace(item.String()) == want {
					return true
				}
			}
			continue
		}
		if strings.TrimSpace(v.String()) == want {
			return true
		}
	}
	return false
}

func isAny(a document.Value) bool {
	s, ok := a.Str()
	return ok && strings.EqualFold(strings.TrimSpace(s), AnySentinel)
}

// parseThreshold recognises "GT<number>" tokens. Tokens without a numeric
// suffix are compared literally.
func parseThreshold(a document.Value) (float64, bool) {
	s, ok := a.Str()
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if len(s) <= len(thresholdPrefix) || !strings.EqualFold(s[:len(thresholdPrefix)], thresholdPrefix) {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s[len(thresholdPrefix):]), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Percent coerces a ratio-or-percentage value to a percentage: numbers at
// or below 1 are treated as fractions and scaled by 100.
func Percent(v document.Value) (float64, error) {
	f, err := v.Float64()
	if err != nil {
		return 0, err
	}
	if f <= 1 {
		return f * 100, nil
	}
	return f, nil
}
