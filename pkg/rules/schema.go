package rules

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"mercator-hq/underwriter/pkg/document"
)

// CatalogSchema is the JSON schema of a rule catalog document.
const CatalogSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["rules"],
  "properties": {
    "rules": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "validator"],
        "properties": {
          "id": {"type": ["string", "integer"]},
          "description": {"type": "string"},
          "trigger": {
            "type": ["object", "null"],
            "properties": {
              "or": {
                "type": ["array", "null"],
                "items": {"type": "object"}
              }
            }
          },
          "validator": {"type": "string", "minLength": 1},
          "params": {"type": ["object", "null"]},
          "thresholds": {"type": ["object", "null"]},
          "alert_message": {"type": ["string", "null"]},
          "condition_message": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

var catalogSchemaLoader = gojsonschema.NewStringLoader(CatalogSchema)

// SchemaError lists JSON-schema violations in a rule catalog.
type SchemaError struct {
	Violations []string
}

// Error returns the error message.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("rule catalog schema: %d violation(s): %s", len(e.Violations), strings.Join(e.Violations, "; "))
}

// ValidateSchema checks a raw YAML rule catalog against CatalogSchema.
func ValidateSchema(data []byte) error {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse rule catalog: %w", err)
	}

	// Normalise YAML maps so the document is JSON-encodable.
	docLoader := gojsonschema.NewGoLoader(document.FromAny(raw).Interface())

	result, err := gojsonschema.Validate(catalogSchemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("validate rule catalog schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return &SchemaError{Violations: violations}
}
