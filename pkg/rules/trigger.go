package rules

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"mercator-hq/underwriter/pkg/document"
)

// OrKey is the reserved trigger key holding OR blocks.
const OrKey = "or"

// Check is a single-field trigger predicate: the field must match one of
// the allowed values. Allowed entries may be literal values, the "ANY"
// sentinel, or "GT<n>" threshold tokens.
type Check struct {
	Field   string
	Allowed []document.Value
}

// Block is an AND of checks.
type Block []Check

// Trigger decides whether a rule applies to a context.
//
// When Or is non-empty at least one block must match; every check in All
// must match as well. A trigger with neither is unconditional.
type Trigger struct {
	Or  []Block
	All Block
}

// Field builds a Check from plain Go values.
func Field(name string, allowed ...interface{}) Check {
	values := make([]document.Value, len(allowed))
	for i, a := range allowed {
		values[i] = document.FromAny(a)
	}
	return Check{Field: name, Allowed: values}
}

// When builds a trigger whose checks must all match.
func When(checks ...Check) Trigger {
	return Trigger{All: Block(checks)}
}

// OrElse returns a copy of t with the given OR blocks.
func (t Trigger) OrElse(blocks ...Block) Trigger {
	t.Or = append(append([]Block(nil), t.Or...), blocks...)
	return t
}

// IsEmpty reports whether the trigger has no predicates.
func (t Trigger) IsEmpty() bool {
	return len(t.Or) == 0 && len(t.All) == 0
}

// FieldNames returns every field referenced by the trigger.
func (t Trigger) FieldNames() []string {
	var names []string
	seen := make(map[string]bool)
	add := func(b Block) {
		for _, c := range b {
			if !seen[c.Field] {
				seen[c.Field] = true
				names = append(names, c.Field)
			}
		}
	}
	for _, b := range t.Or {
		add(b)
	}
	add(t.All)
	return names
}

// UnmarshalYAML decodes a trigger mapping, preserving key order.
func (t *Trigger) UnmarshalYAML(node *yaml.Node) error {
	*t = Trigger{}

	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: trigger must be a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		if key.Value == OrKey {
			blocks, err := decodeOrBlocks(value)
			if err != nil {
				return err
			}
			t.Or = blocks
			continue
		}

		check, err := decodeCheck(key.Value, value)
		if err != nil {
			return err
		}
		t.All = append(t.All, check)
	}

	return nil
}

// MarshalJSON renders the trigger in its declarative form.
func (t Trigger) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(t.All)+1)
	for _, c := range t.All {
		out[c.Field] = c.Allowed
	}
	if len(t.Or) > 0 {
		blocks := make([]map[string][]document.Value, len(t.Or))
		for i, b := range t.Or {
			blocks[i] = make(map[string][]document.Value, len(b))
			for _, c := range b {
				blocks[i][c.Field] = c.Allowed
			}
		}
		out[OrKey] = blocks
	}
	return json.Marshal(out)
}

func decodeOrBlocks(node *yaml.Node) ([]Block, error) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: trigger %q must be a list of mappings", node.Line, OrKey)
	}

	blocks := make([]Block, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: each %q block must be a mapping", item.Line, OrKey)
		}
		block := make(Block, 0, len(item.Content)/2)
		for i := 0; i+1 < len(item.Content); i += 2 {
			check, err := decodeCheck(item.Content[i].Value, item.Content[i+1])
			if err != nil {
				return nil, err
			}
			block = append(block, check)
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func decodeCheck(field string, node *yaml.Node) (Check, error) {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return Check{}, fmt.Errorf("line %d: trigger field %q: %w", node.Line, field, err)
	}

	if list, ok := raw.([]interface{}); ok {
		return Field(field, list...), nil
	}
	return Field(field, raw), nil
}
