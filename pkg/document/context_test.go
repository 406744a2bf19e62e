package document

import (
	"encoding/json"
	"testing"
)

func TestParseContext(t *testing.T) {
	payload := []byte(`{
		"los": {"loan_id": "L-100", "ltv": 0.8},
		"credit_report": {"Tradelines": []},
		"unexpected": {"a": 1}
	}`)

	ctx, err := ParseContext(payload)
	if err != nil {
		t.Fatalf("ParseContext() error = %v", err)
	}

	if got := ctx.LoanID(); got != "L-100" {
		t.Errorf("LoanID() = %q, want %q", got, "L-100")
	}

	if !ctx.Has(SourceCredit) {
		t.Error("expected credit_report to be present")
	}

	if ctx.Has(SourceTitle) {
		t.Error("title was not supplied")
	}

	title := ctx.Get(SourceTitle)
	if title.Kind() != KindMapping || title.Len() != 0 {
		t.Errorf("absent source should resolve to empty mapping, got %v", title)
	}

	sources := ctx.Sources()
	if len(sources) != 3 || sources[0] != SourceOrigination || sources[1] != SourceCredit {
		t.Errorf("Sources() = %v", sources)
	}
}

func TestParseContext_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{"los":`},
		{"array payload", `[1,2]`},
		{"scalar source", `{"los": 5}`},
		{"list source", `{"credit_report": [1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseContext([]byte(tt.payload)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseContext_UnknownScalarKeys(t *testing.T) {
	ctx, err := ParseContext([]byte(`{"los":{"loan_id":"L1"},"request_id":"abc-123","attempt":2}`))
	if err != nil {
		t.Fatalf("ParseContext() error = %v", err)
	}
	if got := ctx.LoanID(); got != "L1" {
		t.Errorf("LoanID() = %q, want L1", got)
	}
	if got := ctx.Get(Source("request_id")).String(); got != "abc-123" {
		t.Errorf("request_id = %q, want abc-123", got)
	}

	data, err := json.Marshal(ctx)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded Context
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() of re-encoded context error = %v", err)
	}
}

func TestContext_NullSourceIsEmpty(t *testing.T) {
	ctx, err := ParseContext([]byte(`{"appraisal": null}`))
	if err != nil {
		t.Fatalf("ParseContext() error = %v", err)
	}
	if ctx.Get(SourceAppraisal).Kind() != KindMapping {
		t.Error("null source should read as empty mapping")
	}
}

func TestContext_With(t *testing.T) {
	base := NewContext(map[Source]Value{SourceOrigination: EmptyMapping()})
	next := base.With(SourceTitle, Mapping(map[string]Value{"chain": String("x")}))

	if base.Has(SourceTitle) {
		t.Error("With must not modify the receiver")
	}
	if !next.Has(SourceTitle) || !next.Has(SourceOrigination) {
		t.Error("With should keep existing sources and add the new one")
	}
}

func TestContext_MarshalJSON(t *testing.T) {
	ctx := NewContext(map[Source]Value{
		SourceOrigination: Mapping(map[string]Value{"loan_id": Int(7)}),
	})

	data, err := json.Marshal(ctx)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Context
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.LoanID() != "7" {
		t.Errorf("LoanID() = %q, want 7", decoded.LoanID())
	}
}

func TestParseSource(t *testing.T) {
	for _, s := range Priority {
		if _, err := ParseSource(string(s)); err != nil {
			t.Errorf("ParseSource(%q) error = %v", s, err)
		}
	}
	if _, err := ParseSource("mongo"); err == nil {
		t.Error("expected error for unknown source")
	}
}
