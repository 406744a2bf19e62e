package validators

import (
	"strings"

	"mercator-hq/underwriter/pkg/document"
	"mercator-hq/underwriter/pkg/engine"
	"mercator-hq/underwriter/pkg/fields"
	"mercator-hq/underwriter/pkg/rules"
)

// Gift alerts when the borrower receives any gift funds.
type Gift struct{}

// Evaluate implements engine.Validator.
func (Gift) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	v := r.Resolve(c, los, "gift_amount")
	details := map[string]interface{}{"gift_amount": raw(v)}

	if amount, ok := number(v); ok && amount > 0 {
		return engine.Alert(rule, "", details), nil
	}
	return engine.Pass(rule, details), nil
}

// HomebuyerProgram requires a homebuyer education certificate.
type HomebuyerProgram struct{}

// Evaluate implements engine.Validator.
func (HomebuyerProgram) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	cert := r.Resolve(c, los, "homebuyer_education_certificate")
	details := map[string]interface{}{"homebuyer_education_certificate": raw(cert)}

	if isYes(cert) {
		return engine.Pass(rule, details), nil
	}
	return engine.Condition(rule, "", details), nil
}

// LienPayoff alerts when liabilities being paid off are more than a single
// mortgage.
type LienPayoff struct{}

// Evaluate implements engine.Validator.
func (LienPayoff) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	paidOff := r.Resolve(c, los, "liabilities_will_be_paid_off")
	accountType := r.Resolve(c, los, "liabilities_account_type")
	names := r.Resolve(c, los, "liabilities_name")
	details := map[string]interface{}{
		"paid_off":         raw(paidOff),
		"account_type":     raw(accountType),
		"liabilities_name": raw(names),
	}

	if t := text(paidOff); t != "yes" && t != "true" {
		return engine.Pass(rule, details), nil
	}

	if countNames(names) > 1 {
		return engine.Alert(rule, "", details), nil
	}
	if !strings.Contains(text(accountType), "mortgage") {
		return engine.Alert(rule, "", details), nil
	}
	return engine.Pass(rule, details), nil
}

// countNames counts the comma-separated creditor names in v.
func countNames(v document.Value) int {
	s, ok := v.Str()
	if !ok {
		return 0
	}
	n := 0
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n
}
