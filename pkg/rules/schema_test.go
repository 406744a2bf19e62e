package rules

import (
	"errors"
	"testing"
)

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{"valid catalog", sampleCatalog, false},
		{"missing rules key", "other: []\n", true},
		{"rule without validator", "rules:\n  - id: a\n", true},
		{"or not a list", "rules:\n  - id: a\n    validator: X\n    trigger:\n      or: 5\n", true},
		{"params not object", "rules:\n  - id: a\n    validator: X\n    params: [1]\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchema([]byte(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSchema() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var schemaErr *SchemaError
				if !errors.As(err, &schemaErr) {
					t.Errorf("error type = %T, want *SchemaError", err)
				}
			}
		})
	}
}

func TestValidateSchema_BadYAML(t *testing.T) {
	if err := ValidateSchema([]byte("rules: [\n")); err == nil {
		t.Error("expected parse error")
	}
}
