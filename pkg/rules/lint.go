package rules

import (
	"fmt"
	"strings"
)

// Severity classifies a lint finding.
type Severity string

const (
	// SeverityError findings make a catalog unusable.
	SeverityError Severity = "error"

	// SeverityWarning findings are reported but do not block loading.
	SeverityWarning Severity = "warning"
)

// Finding is a single lint result.
type Finding struct {
	// Index is the rule position in the catalog.
	Index int `json:"index"`

	// RuleID is the offending rule, if it has one.
	RuleID string `json:"rule_id,omitempty"`

	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// String formats the finding for CLI output.
func (f Finding) String() string {
	id := f.RuleID
	if id == "" {
		id = fmt.Sprintf("#%d", f.Index)
	}
	return fmt.Sprintf("%s: rule %s: %s", f.Severity, id, f.Message)
}

// NameSet answers membership queries. Both the validator registry and the
// field catalog satisfy it.
type NameSet interface {
	Has(name string) bool
}

// LintOptions supplies optional cross-references for Lint.
type LintOptions struct {
	// Validators, when set, flags rules naming unregistered validators.
	Validators NameSet

	// Fields, when set, flags trigger fields missing from the field catalog.
	Fields NameSet
}

// Lint checks a rule list for problems that would make evaluation results
// misleading. Unknown validators are errors because every evaluation of the
// rule would produce ERROR; unknown trigger fields are warnings because they
// resolve to catalogue defaults.
func Lint(list []*Rule, opts LintOptions) []Finding {
	var findings []Finding
	seen := make(map[string]int)

	for i, r := range list {
		add := func(sev Severity, format string, args ...interface{}) {
			findings = append(findings, Finding{
				Index:    i,
				RuleID:   r.ID,
				Severity: sev,
				Message:  fmt.Sprintf(format, args...),
			})
		}

		if strings.TrimSpace(r.ID) == "" {
			add(SeverityError, "missing id")
		} else if first, dup := seen[r.ID]; dup {
			add(SeverityError, "duplicate id (first declared at index %d)", first)
		} else {
			seen[r.ID] = i
		}

		if strings.TrimSpace(r.Validator) == "" {
			add(SeverityError, "missing validator")
		} else if opts.Validators != nil && !opts.Validators.Has(r.Validator) {
			add(SeverityError, "validator %q is not registered", r.Validator)
		}

		for bi, block := range r.Trigger.Or {
			if len(block) == 0 {
				add(SeverityWarning, "or block %d is empty and always matches", bi)
			}
		}

		if opts.Fields != nil {
			for _, name := range r.Trigger.FieldNames() {
				if !opts.Fields.Has(name) {
					add(SeverityWarning, "trigger field %q is not in the field catalog", name)
				}
			}
		}
	}

	return findings
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidationError wraps error-severity lint findings.
type ValidationError struct {
	Findings []Finding
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	var errs []string
	for _, f := range e.Findings {
		if f.Severity == SeverityError {
			errs = append(errs, f.String())
		}
	}
	if len(errs) == 1 {
		return "rule catalog validation error: " + errs[0]
	}
	return fmt.Sprintf("rule catalog: %d validation errors: %s", len(errs), strings.Join(errs, "; "))
}

// Validate runs Lint and returns a *ValidationError when errors are found.
func Validate(list []*Rule, opts LintOptions) error {
	findings := Lint(list, opts)
	if HasErrors(findings) {
		return &ValidationError{Findings: findings}
	}
	return nil
}
