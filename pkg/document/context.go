package document

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Source names one of the fixed loan document sources. The string value is
// the key used in request payloads and in the field catalog.
type Source string

const (
	// SourceOrigination is the loan origination system record.
	SourceOrigination Source = "los"

	// SourceTitle is the title report.
	SourceTitle Source = "title"

	// SourceAppraisal is the appraisal report.
	SourceAppraisal Source = "appraisal"

	// SourceCredit is the credit report.
	SourceCredit Source = "credit_report"

	// SourceInspection is the property inspection (drive-by) report.
	SourceInspection Source = "drive_report"
)

// Priority lists every source in resolution priority order.
var Priority = []Source{
	SourceOrigination,
	SourceTitle,
	SourceAppraisal,
	SourceCredit,
	SourceInspection,
}

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	for _, known := range Priority {
		if s == known {
			return true
		}
	}
	return false
}

// ParseSource validates a source key.
func ParseSource(name string) (Source, error) {
	s := Source(name)
	if !s.Valid() {
		return "", fmt.Errorf("unknown document source %q", name)
	}
	return s, nil
}

// Context is the combined per-source document bundle for one evaluation.
// The zero Context is empty and ready to use.
type Context struct {
	docs map[Source]Value
}

// NewContext creates a context from per-source documents.
func NewContext(docs map[Source]Value) Context {
	c := Context{docs: make(map[Source]Value, len(docs))}
	for s, v := range docs {
		c.docs[s] = v
	}
	return c
}

// Get returns the document for source. Absent sources yield an empty mapping.
func (c Context) Get(source Source) Value {
	if v, ok := c.docs[source]; ok && !v.IsNull() {
		return v
	}
	return EmptyMapping()
}

// Has reports whether a document was supplied for source.
func (c Context) Has(source Source) bool {
	_, ok := c.docs[source]
	return ok
}

// With returns a copy of c with the document for source replaced.
func (c Context) With(source Source, doc Value) Context {
	next := Context{docs: make(map[Source]Value, len(c.docs)+1)}
	for s, v := range c.docs {
		next.docs[s] = v
	}
	next.docs[source] = doc
	return next
}

// Sources returns the supplied sources in priority order followed by any
// unknown keys that were present in the payload.
func (c Context) Sources() []Source {
	out := make([]Source, 0, len(c.docs))
	for _, s := range Priority {
		if _, ok := c.docs[s]; ok {
			out = append(out, s)
		}
	}
	for s := range c.docs {
		if !s.Valid() {
			out = append(out, s)
		}
	}
	return out
}

// LoanID returns los.loan_id rendered as text, or "" when absent.
func (c Context) LoanID() string {
	id, ok := c.Get(SourceOrigination).Get("loan_id")
	if !ok {
		return ""
	}
	return id.String()
}

// MarshalJSON encodes the context as an object keyed by source.
func (c Context) MarshalJSON() ([]byte, error) {
	out := make(map[Source]Value, len(c.docs))
	for s, v := range c.docs {
		out[s] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a payload object keyed by source.
func (c *Context) UnmarshalJSON(data []byte) error {
	parsed, err := ParseContext(data)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseContext decodes a JSON payload of the form
// {"los": {...}, "title": {...}, ...}. Known sources must be objects or
// null. Unknown top-level keys are kept as-is but are never consulted by the
// resolver.
func ParseContext(data []byte) (Context, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return Context{}, fmt.Errorf("decode context: %w", err)
	}

	c := Context{docs: make(map[Source]Value, len(raw))}
	for key, doc := range raw {
		v := FromAny(doc)
		if Source(key).Valid() && !v.IsNull() && v.Kind() != KindMapping {
			return Context{}, fmt.Errorf("decode context: source %q must be an object, got %s", key, v.Kind())
		}
		c.docs[Source(key)] = v
	}
	return c, nil
}
