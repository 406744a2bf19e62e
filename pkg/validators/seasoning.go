package validators

import (
	"mercator-hq/underwriter/pkg/document"
	"mercator-hq/underwriter/pkg/engine"
	"mercator-hq/underwriter/pkg/fields"
	"mercator-hq/underwriter/pkg/rules"
)

const (
	// MessageMortgageNotReported is the ALERT message when the mortgage being
	// paid off has no matching credit tradeline.
	MessageMortgageNotReported = "The mortgage being paid off is not reported on credit report  please review reasoning requirement."

	// MessageSeasoningNotMet is the ALERT message when a matched tradeline is
	// too recent for a cash-out refinance.
	MessageSeasoningNotMet = "The seasoning requirement for cash out refinance is not met, review and proceed"

	defaultNameMatchScore = 70
	defaultCashoutMonths  = 12
	defaultSeasonMonths   = 6
)

// CashoutSeasoning checks that the mortgage being refinanced appears on the
// credit report and has been open for longer than params.min_months
// (default 12).
//
// Tradelines match when the last four account digits agree and the
// creditor name scores at least params.name_match_score (default 70).
type CashoutSeasoning struct{}

// Evaluate implements engine.Validator.
func (CashoutSeasoning) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	account := r.Resolve(c, los, "liabilities_account_number")
	name := r.Resolve(c, los, "liabilities_name")
	closing := r.Resolve(c, los, "estimated_closing_date")
	details := map[string]interface{}{
		"liabilities_account_number": raw(account),
		"liabilities_name":           raw(name),
		"estimated_closing_date":     raw(closing),
	}

	lines := tradelines(c, r)
	if len(lines) == 0 {
		return engine.NotApplicable(rule), nil
	}

	last4 := lastN(account.String(), 4)
	threshold := int(rule.Params.Float("name_match_score", defaultNameMatchScore))

	var matched document.Value
	found := false
	for _, line := range lines {
		lineLast4 := lastN(firstNonBlank(line, "Creditor Account Number", "Creditor_Account_Number").String(), 4)
		if last4 == "" || lineLast4 == "" || last4 != lineLast4 {
			continue
		}

		creditor := firstNonBlank(line, "Creditor Name", "Creditor_Name").String()
		score := TokenSetRatio(creditor, name.String())
		details["matched_account_last4"] = lineLast4
		details["creditor_name"] = creditor
		details["fuzzy_score"] = score
		if score >= threshold {
			matched, found = line, true
			break
		}
	}

	if !found {
		return engine.Alert(rule, MessageMortgageNotReported, details), nil
	}

	opened, _ := matched.Get("Date_Opened")
	openedAt, ok := ParseDate(opened)
	if !ok {
		return engine.NotApplicable(rule), nil
	}
	closingAt, ok := ParseDate(closing)
	if !ok {
		return engine.NotApplicable(rule), nil
	}

	months := MonthsBetween(openedAt, closingAt)
	details["months"] = months
	if months <= int(rule.Params.Float("min_months", defaultCashoutMonths)) {
		return engine.Alert(rule, MessageSeasoningNotMet, details), nil
	}
	return engine.Pass(rule, details), nil
}

// tradelines returns the credit report tradelines. A single tradeline may be
// reported as a mapping instead of a list.
func tradelines(c document.Context, r *fields.Resolver) []document.Value {
	v := r.Resolve(c, document.SourceCredit, "tradelines")
	if v.IsEmpty() {
		v, _ = c.Get(document.SourceCredit).Get("Tradelines")
	}

	switch v.Kind() {
	case document.KindMapping:
		if v.Len() == 0 {
			return nil
		}
		return []document.Value{v}
	case document.KindSequence:
		lines := make([]document.Value, 0, v.Len())
		for _, item := range v.Items() {
			if item.Kind() == document.KindMapping {
				lines = append(lines, item)
			}
		}
		return lines
	}
	return nil
}

// Title alerts when the chain of title is younger than params.min_months
// (default 6) at closing.
type Title struct{}

// Evaluate implements engine.Validator.
func (Title) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	chain := r.Resolve(c, document.SourceTitle, "chain_title_date")
	closing := r.Resolve(c, los, "estimated_closing_date")
	details := map[string]interface{}{"chain_title_date": raw(chain), "estimated_closing_date": raw(closing)}

	return seasoned(rule, chain, closing, "min_months", details)
}

// AppraisalPriorSale alerts when the appraised property last sold less than
// params.min_months (default 6) before closing.
type AppraisalPriorSale struct{}

// Evaluate implements engine.Validator.
func (AppraisalPriorSale) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	sale := r.Resolve(c, document.SourceAppraisal, "prior_sale_date")
	closing := r.Resolve(c, los, "estimated_closing_date")
	details := map[string]interface{}{"prior_sale_date": raw(sale), "estimated_closing_date": raw(closing)}

	return seasoned(rule, sale, closing, "min_months", details)
}

// Fraud alerts when the inspection report records a fraud event less than
// params.max_months (default 6) before closing. It only applies when the
// inspected address is the subject property.
type Fraud struct{}

var addressParts = []string{"street", "city", "state", "unit"}

// Evaluate implements engine.Validator.
func (Fraud) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (engine.Result, error) {
	inspected := make(map[string]interface{}, len(addressParts))
	subject := make(map[string]interface{}, len(addressParts))
	details := map[string]interface{}{"drive_addr": inspected, "subject_addr": subject}

	same := true
	for _, part := range addressParts {
		dv := r.Resolve(c, document.SourceInspection, "drive_"+part)
		sv := r.Resolve(c, los, "urla_lender_subject_"+part)
		inspected[part] = raw(dv)
		subject[part] = raw(sv)
		if Normalize(dv.String()) != Normalize(sv.String()) {
			same = false
		}
	}
	if !same {
		return engine.NotApplicable(rule), nil
	}

	recorded := r.Resolve(c, document.SourceInspection, "fraud_recorded_date")
	closing := r.Resolve(c, los, "estimated_closing_date")
	return seasoned(rule, recorded, closing, "max_months", details)
}

// seasoned alerts when fewer than the configured months separate event
// from closing. Missing or unparseable dates are not applicable.
func seasoned(rule *rules.Rule, event, closing document.Value, param string, details map[string]interface{}) (engine.Result, error) {
	eventAt, ok := ParseDate(event)
	if !ok {
		return engine.NotApplicable(rule), nil
	}
	closingAt, ok := ParseDate(closing)
	if !ok {
		return engine.NotApplicable(rule), nil
	}

	months := MonthsBetween(eventAt, closingAt)
	details["months"] = months
	// Fractional thresholds truncate to whole months.
	if months < int(rule.Params.Float(param, defaultSeasonMonths)) {
		return engine.Alert(rule, "", details), nil
	}
	return engine.Pass(rule, details), nil
}
