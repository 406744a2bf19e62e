package logging

import (
	"log/slog"
	"regexp"
	"strings"

	"mercator-hq/underwriter/pkg/config"
)

// Redactor masks borrower PII in log values.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern is a compiled regex with either a replacement template or a
// mask function.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
	mask        func(string) string
}

// Built-in pattern names.
const (
	PatternSSN     = "ssn"
	PatternPhone   = "phone"
	PatternEmail   = "email"
	PatternAccount = "account_number"
)

// sensitiveKeys are masked regardless of their value.
var sensitiveKeys = []string{
	"ssn", "social_security",
	"account_number", "accountnumber",
	"password", "passwd", "secret",
	"token", "authorization",
}

// NewRedactor creates a Redactor with the built-in patterns followed by
// customPatterns. Invalid custom patterns are skipped.
func NewRedactor(customPatterns []config.RedactPattern) *Redactor {
	r := &Redactor{}

	// Order matters: SSNs and phone numbers must be masked before the
	// generic digit-run account pattern sees them.
	r.patterns = append(r.patterns,
		&redactPattern{
			name:        PatternSSN,
			regex:       regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			replacement: "***-**-****",
		},
		&redactPattern{
			name:        PatternPhone,
			regex:       regexp.MustCompile(`(?:\+?1[-.\s])?\(?\b\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`),
			replacement: "***-***-****",
		},
		&redactPattern{
			name:  PatternEmail,
			regex: regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
			mask:  RedactEmail,
		},
		&redactPattern{
			name:  PatternAccount,
			regex: regexp.MustCompile(`\b\d{9,17}\b`),
			mask:  RedactAccountNumber,
		},
	)

	for _, p := range customPatterns {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	return r
}

// PatternNames returns the active pattern names in application order.
func (r *Redactor) PatternNames() []string {
	names := make([]string, len(r.patterns))
	for i, p := range r.patterns {
		names[i] = p.name
	}
	return names
}

// RedactString masks every PII match in value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		if p.mask != nil {
			value = p.regex.ReplaceAllStringFunc(value, p.mask)
		} else {
			value = p.regex.ReplaceAllString(value, p.replacement)
		}
	}
	return value
}

// RedactAttr masks one attribute. Sensitive keys are masked whatever their
// value; string values are scanned for PII; groups are walked recursively.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, maskValue(v))
	}

	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, r.RedactString(v.String()))
	case slog.KindGroup:
		group := v.Group()
		out := make([]any, len(group))
		for i, ga := range group {
			out[i] = r.RedactAttr(ga)
		}
		return slog.Group(a.Key, out...)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.String(a.Key, r.RedactString(err.Error()))
		}
	}
	return slog.Attr{Key: a.Key, Value: v}
}

// RedactArgs redacts key/value argument pairs as accepted by slog.
func (r *Redactor) RedactArgs(args ...any) []any {
	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 1; i < len(redacted); i += 2 {
		key, _ := redacted[i-1].(string)
		if isSensitiveKey(key) {
			redacted[i] = maskValue(slog.AnyValue(redacted[i]))
			continue
		}
		if s, ok := redacted[i].(string); ok {
			redacted[i] = r.RedactString(s)
		}
	}
	return redacted
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// maskValue keeps the last four characters of longer values.
func maskValue(v slog.Value) string {
	s := v.String()
	if len(s) <= 4 {
		return "***"
	}
	return "***" + s[len(s)-4:]
}

// RedactEmail keeps the first character of the local part and the domain.
func RedactEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	if at == 0 {
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}

// RedactAccountNumber keeps only the last four digits.
func RedactAccountNumber(account string) string {
	if len(account) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(account)-4) + account[len(account)-4:]
}
