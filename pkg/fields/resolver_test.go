package fields

import (
	"testing"

	"mercator-hq/underwriter/pkg/document"
)

const testCatalog = `
los:
  ltv:
    path: ["Loan Information", "LTV"]
    default: null
  no_units:
    path: ["Property", "No. Units"]
    default: 1
  occupancy:
    path: "Property -> Occupancy"
    default: "Primary"
  constant_flag:
    path: []
    default: "N"
  street:
    path: ["Subject", "Street"]
title:
  street:
    path: ["Property", "Street"]
  chain_title_date:
    path: ["Chain of Title", "Recorded Date"]
appraisal:
  street:
    path: ["Subject", "Address", "Street"]
`

func mustCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := ParseCatalog([]byte(testCatalog))
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}
	return c
}

func mustContext(t *testing.T, payload string) document.Context {
	t.Helper()
	ctx, err := document.ParseContext([]byte(payload))
	if err != nil {
		t.Fatalf("ParseContext() error = %v", err)
	}
	return ctx
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(mustCatalog(t))

	ctx := mustContext(t, `{
		"los": {
			"Loan Information": {"LTV": 0.97},
			"Property": {"No. Units": null, "Occupancy": "Secondary"},
			"Subject": "not-a-mapping"
		}
	}`)

	tests := []struct {
		name   string
		source document.Source
		field  string
		want   document.Value
	}{
		{"nested value", document.SourceOrigination, "ltv", document.Float(0.97)},
		{"key with dot resolves literally", document.SourceOrigination, "occupancy", document.String("Secondary")},
		{"null terminal falls back to default", document.SourceOrigination, "no_units", document.Int(1)},
		{"empty path returns default", document.SourceOrigination, "constant_flag", document.String("N")},
		{"non-mapping intermediate returns default", document.SourceOrigination, "street", document.Null},
		{"uncatalogued field", document.SourceOrigination, "unknown", document.Null},
		{"absent source", document.SourceTitle, "chain_title_date", document.Null},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(ctx, tt.source, tt.field)
			if !document.Equal(got, tt.want) {
				t.Errorf("Resolve() = %v (%s), want %v (%s)", got, got.Kind(), tt.want, tt.want.Kind())
			}
		})
	}
}

func TestResolver_DefaultWithoutContext(t *testing.T) {
	r := NewResolver(mustCatalog(t))

	got := r.Resolve(document.Context{}, document.SourceOrigination, "occupancy")
	if s, _ := got.Str(); s != "Primary" {
		t.Errorf("Resolve() = %v, want configured default %q", got, "Primary")
	}
}

func TestResolver_ResolveAny(t *testing.T) {
	r := NewResolver(mustCatalog(t))

	tests := []struct {
		name    string
		payload string
		want    document.Value
	}{
		{
			name:    "higher priority source wins",
			payload: `{"los": {"Subject": {"Street": "1 Main"}}, "title": {"Property": {"Street": "2 Oak"}}}`,
			want:    document.String("1 Main"),
		},
		{
			name:    "empty string skipped",
			payload: `{"los": {"Subject": {"Street": ""}}, "title": {"Property": {"Street": "2 Oak"}}}`,
			want:    document.String("2 Oak"),
		},
		{
			name:    "empty collection skipped",
			payload: `{"title": {"Property": {"Street": []}}, "appraisal": {"Subject": {"Address": {"Street": "3 Elm"}}}}`,
			want:    document.String("3 Elm"),
		},
		{
			name:    "nothing found",
			payload: `{}`,
			want:    document.Null,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ResolveAny(mustContext(t, tt.payload), "street")
			if !document.Equal(got, tt.want) {
				t.Errorf("ResolveAny() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolver_NilCatalog(t *testing.T) {
	r := NewResolver(nil)
	if got := r.Resolve(document.Context{}, document.SourceOrigination, "ltv"); !got.IsNull() {
		t.Errorf("Resolve() = %v, want null", got)
	}
}
