package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mercator-hq/underwriter/pkg/document"
)

// Rule is a declaratively configured business rule.
type Rule struct {
	// ID uniquely identifies the rule in results.
	ID string `yaml:"id" json:"id"`

	// Description is free text for reviewers.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Trigger decides whether the validator runs at all.
	Trigger Trigger `yaml:"trigger" json:"trigger"`

	// Validator names the registered capability that computes the verdict.
	Validator string `yaml:"validator" json:"validator"`

	// Params is free-form validator configuration.
	Params Params `yaml:"params,omitempty" json:"params,omitempty"`

	// Thresholds is free-form validator configuration for limit checks.
	Thresholds Params `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`

	// AlertMessage is the default message for ALERT verdicts.
	AlertMessage string `yaml:"alert_message,omitempty" json:"alert_message,omitempty"`

	// ConditionMessage is the default message for CONDITION verdicts.
	ConditionMessage string `yaml:"condition_message,omitempty" json:"condition_message,omitempty"`
}

// Params holds free-form rule configuration.
type Params map[string]interface{}

// Has reports whether key is set to a non-null value.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// Value returns the parameter as a document value.
func (p Params) Value(key string) document.Value {
	return document.FromAny(p[key])
}

// Float returns a numeric parameter or def when it is missing or not numeric.
func (p Params) Float(key string, def float64) float64 {
	if !p.Has(key) {
		return def
	}
	f, err := p.Value(key).Float64()
	if err != nil {
		return def
	}
	return f
}

// Number returns a numeric parameter and whether it was set and numeric.
func (p Params) Number(key string) (float64, bool) {
	if !p.Has(key) {
		return 0, false
	}
	f, err := p.Value(key).Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// Text returns a text parameter or def when missing.
func (p Params) Text(key, def string) string {
	if !p.Has(key) {
		return def
	}
	return p.Value(key).String()
}

// catalogDocument is the YAML layout of a rule catalog.
type catalogDocument struct {
	Rules []*Rule `yaml:"rules"`
}

// Parse decodes a rule catalog document. Rules keep their declared order.
func Parse(data []byte) ([]*Rule, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rule catalog: %w", err)
	}

	out := make([]*Rule, 0, len(doc.Rules))
	for i, r := range doc.Rules {
		if r == nil {
			return nil, fmt.Errorf("parse rule catalog: rule at index %d is empty", i)
		}
		out = append(out, r)
	}
	return out, nil
}

// Load reads and parses a rule catalog file.
func Load(path string) ([]*Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule catalog %q: %w", path, err)
	}
	return Parse(data)
}
