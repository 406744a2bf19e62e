package validators

import (
	"math"

	"mercator-hq/underwriter/pkg/document"
	"mercator-hq/underwriter/pkg/engine"
	"mercator-hq/underwriter/pkg/fields"
	"mercator-hq/underwriter/pkg/rules"
)

const los = document.SourceOrigination

// LTV alerts when the loan-to-value, combined LTV or home-equity combined
// LTV exceeds its threshold. Ratios at or below 1 are read as fractions.
type LTV struct{}

// Evaluate implements engine.Validator.
func (LTV) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	details := map[string]interface{}{"thresholds": map[string]interface{}(rule.Thresholds)}

	exceeded := false
	for _, name := range []string{"ltv", "cltv", "hcltv"} {
		v := r.Resolve(c, los, name)
		details[name] = raw(v)

		limit, ok := rule.Thresholds.Number(name)
		if !ok {
			continue
		}
		pct, err := engine.Percent(v)
		if err == nil && pct > limit {
			exceeded = true
		}
	}

	if exceeded {
		return engine.Alert(rule, "", details), nil
	}
	return engine.Pass(rule, details), nil
}

// DTI alerts when the debt-to-income ratio exceeds params.dti_limit
// (default 50).
type DTI struct{}

// Evaluate implements engine.Validator.
func (DTI) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	v := r.Resolve(c, los, "dti")
	limit := rule.Params.Float("dti_limit", 50)
	details := map[string]interface{}{"dti": raw(v), "limit": limit}

	dti, ok := number(v)
	if !ok {
		return engine.NotApplicable(rule), nil
	}
	if dti > limit {
		return engine.Alert(rule, "", details), nil
	}
	return engine.Pass(rule, details), nil
}

// CreditScore alerts when the average representative score is at or below
// params.min_score (default 620).
type CreditScore struct{}

// Evaluate implements engine.Validator.
func (CreditScore) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	v := r.Resolve(c, los, "average_representative_credit_score")
	details := map[string]interface{}{"score": raw(v)}

	score, ok := number(v)
	if !ok {
		return engine.NotApplicable(rule), nil
	}
	if score <= rule.Params.Float("min_score", 620) {
		return engine.Alert(rule, "", details), nil
	}
	return engine.Pass(rule, details), nil
}

// HomebuyerLTV requires a homebuyer education certificate when LTV exceeds
// params.max_ltv (default 95).
type HomebuyerLTV struct{}

// Evaluate implements engine.Validator.
func (HomebuyerLTV) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	ltv := r.Resolve(c, los, "ltv")
	cert := r.Resolve(c, los, "homebuyer_education_certificate")
	details := map[string]interface{}{"ltv": raw(ltv), "homebuyer_education_certificate": raw(cert)}

	pct, err := engine.Percent(ltv)
	if err != nil {
		return engine.NotApplicable(rule), nil
	}
	if pct > rule.Params.Float("max_ltv", 95) && !isYes(cert) {
		return engine.Condition(rule, "", details), nil
	}
	return engine.Pass(rule, details), nil
}

// Cashback limits cash back to the borrower: any negative cash-from or
// cash-to amount must not exceed the larger of params.absolute_limit
// (default 2000) and params.percent_limit (default 0.01) of the loan amount.
type Cashback struct{}

// Evaluate implements engine.Validator.
func (Cashback) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	cashFrom := r.Resolve(c, los, "cash_from_borrower")
	cashTo := r.Resolve(c, los, "cash_to_borrower")
	amount := r.Resolve(c, los, "loan_amount")
	details := map[string]interface{}{
		"cash_from":   raw(cashFrom),
		"cash_to":     raw(cashTo),
		"loan_amount": raw(amount),
	}

	loan, ok := number(amount)
	if !ok {
		return engine.NotApplicable(rule), nil
	}

	var cashBack []float64
	for _, v := range []document.Value{cashFrom, cashTo} {
		if f, ok := number(v); ok && f < 0 {
			cashBack = append(cashBack, -f)
		}
	}
	if len(cashBack) == 0 {
		return engine.NotApplicable(rule), nil
	}

	maxAllowed := math.Max(
		rule.Params.Float("absolute_limit", 2000),
		loan*rule.Params.Float("percent_limit", 0.01),
	)
	details["max_allowed"] = maxAllowed

	for _, amt := range cashBack {
		if amt > maxAllowed {
			return engine.Alert(rule, "", details), nil
		}
	}
	return engine.Pass(rule, details), nil
}

// Income alerts when total income exceeds the area median income. The
// median comes from the loan file, else from params.area_median_income.
type Income struct{}

// Evaluate implements engine.Validator.
func (Income) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	incomeV := r.Resolve(c, los, "total_income")
	amiV := r.Resolve(c, los, "area_median_income")
	if !amiV.Truthy() {
		amiV = rule.Params.Value("area_median_income")
	}
	details := map[string]interface{}{"total_income": raw(incomeV), "area_median_income": raw(amiV)}

	income, ok := number(incomeV)
	if !ok {
		return engine.NotApplicable(rule), nil
	}
	ami, ok := number(amiV)
	if !ok {
		return engine.NotApplicable(rule), nil
	}
	if income > ami {
		return engine.Alert(rule, "", details), nil
	}
	return engine.Pass(rule, details), nil
}
