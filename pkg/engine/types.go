package engine

import (
	"mercator-hq/underwriter/pkg/document"
	"mercator-hq/underwriter/pkg/fields"
	"mercator-hq/underwriter/pkg/rules"
)

// Status is the verdict of a single rule.
type Status string

const (
	// StatusPass means the rule applied and its requirements are met.
	StatusPass Status = "PASS"

	// StatusAlert flags a finding that needs underwriter review.
	StatusAlert Status = "ALERT"

	// StatusCondition means the loan can proceed once a condition is cleared.
	StatusCondition Status = "CONDITION"

	// StatusNotApplicable means the trigger did not match or the validator
	// found nothing to evaluate.
	StatusNotApplicable Status = "NOT_APPLICABLE"

	// StatusError means the rule could not be evaluated.
	StatusError Status = "ERROR"
)

// Statuses lists every status in reporting order.
var Statuses = []Status{StatusPass, StatusAlert, StatusCondition, StatusNotApplicable, StatusError}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Result is the verdict for one rule.
type Result struct {
	RuleID  string                 `json:"rule_id"`
	Status  Status                 `json:"status"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details"`
}

// Validator computes the verdict of a triggered rule.
//
// Validators must not mutate the rule or the context. A returned error is
// reported as an ERROR result for that rule only.
type Validator interface {
	Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (Result, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(rule *rules.Rule, c document.Context, r *fields.Resolver) (Result, error)

// Evaluate calls f.
func (f ValidatorFunc) Evaluate(rule *rules.Rule, c document.Context, r *fields.Resolver) (Result, error) {
	return f(rule, c, r)
}

// Factory constructs a validator instance.
type Factory func() Validator

// Pass returns a PASS result for rule.
func Pass(rule *rules.Rule, details map[string]interface{}) Result {
	return Result{RuleID: rule.ID, Status: StatusPass, Details: orEmpty(details)}
}

// Alert returns an ALERT result. An empty message falls back to the rule's
// alert message.
func Alert(rule *rules.Rule, message string, details map[string]interface{}) Result {
	if message == "" {
		message = rule.AlertMessage
	}
	return Result{RuleID: rule.ID, Status: StatusAlert, Message: message, Details: orEmpty(details)}
}

// Condition returns a CONDITION result. An empty message falls back to the
// rule's condition message.
func Condition(rule *rules.Rule, message string, details map[string]interface{}) Result {
	if message == "" {
		message = rule.ConditionMessage
	}
	return Result{RuleID: rule.ID, Status: StatusCondition, Message: message, Details: orEmpty(details)}
}

// NotApplicable returns a NOT_APPLICABLE result with no message or details.
func NotApplicable(rule *rules.Rule) Result {
	return Result{RuleID: rule.ID, Status: StatusNotApplicable, Details: map[string]interface{}{}}
}

// CountByStatus tallies results per status. Every known status is present.
func CountByStatus(results []Result) map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

func orEmpty(details map[string]interface{}) map[string]interface{} {
	if details == nil {
		return map[string]interface{}{}
	}
	return details
}
