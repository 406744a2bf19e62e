package validators

import (
	"strings"

	"mercator-hq/underwriter/pkg/document"
	"mercator-hq/underwriter/pkg/engine"
	"mercator-hq/underwriter/pkg/fields"
	"mercator-hq/underwriter/pkg/rules"
)

// Occupancy requires the property to be the borrower's primary residence.
type Occupancy struct{}

// Evaluate implements engine.Validator.
func (Occupancy) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	v := r.Resolve(c, los, "property_will_be")
	details := map[string]interface{}{"property_will_be": raw(v)}

	if v.IsBlank() {
		return engine.NotApplicable(rule), nil
	}
	if text(v) != "primary" {
		return engine.Alert(rule, "", details), nil
	}
	return engine.Pass(rule, details), nil
}

// SecondHome requires a second home to be a single unit.
type SecondHome struct{}

// Evaluate implements engine.Validator.
func (SecondHome) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	v := r.Resolve(c, los, "no_units")
	details := map[string]interface{}{"no_units": raw(v)}

	units, ok := integer(v)
	if !ok {
		return engine.NotApplicable(rule), nil
	}
	if units != 1 {
		return engine.Alert(rule, "", details), nil
	}
	return engine.Pass(rule, details), nil
}

// Investment rejects manufactured housing for investment properties.
type Investment struct{}

// Evaluate implements engine.Validator.
func (Investment) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	program := r.Resolve(c, los, "loan_program_detail")
	propType := r.Resolve(c, los, "property_type")
	details := map[string]interface{}{"loan_program_detail": raw(program), "property_type": raw(propType)}

	if strings.Contains(text(program), "manufactured") || strings.Contains(text(propType), "manufactured") {
		return engine.Alert(rule, "", details), nil
	}
	return engine.Pass(rule, details), nil
}

// LoanProgram requires fixed-rate amortization. params.allowed overrides
// the accepted amortization types.
type LoanProgram struct{}

var defaultAmortization = []string{"fixed rate", "fixed"}

// Evaluate implements engine.Validator.
func (LoanProgram) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	v := r.Resolve(c, los, "amortization_type")
	details := map[string]interface{}{"amortization_type": raw(v)}

	if v.IsEmpty() {
		return engine.NotApplicable(rule), nil
	}

	allowed := defaultAmortization
	if list := rule.Params.Value("allowed"); list.Kind() == document.KindSequence {
		allowed = nil
		for _, item := range list.Items() {
			allowed = append(allowed, text(item))
		}
	}

	got := text(v)
	for _, a := range allowed {
		if got == a {
			return engine.Pass(rule, details), nil
		}
	}
	return engine.Alert(rule, "", details), nil
}
