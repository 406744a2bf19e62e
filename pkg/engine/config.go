package engine

import (
	"fmt"
	"time"
)

// Config contains configuration for the rule evaluation engine.
type Config struct {
	// RecoverPanics converts validator panics into ERROR results.
	// Default: true.
	RecoverPanics bool

	// LogRules logs every rule outcome at debug level.
	// Default: true.
	LogRules bool

	// SlowRuleThreshold logs a warning when a single validator call takes
	// longer than this. Zero disables the check.
	// Default: 250ms.
	SlowRuleThreshold time.Duration
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		RecoverPanics:     true,
		LogRules:          true,
		SlowRuleThreshold: 250 * time.Millisecond,
	}
}

// Validate validates the engine configuration.
func (c *Config) Validate() error {
	if c.SlowRuleThreshold < 0 {
		return fmt.Errorf("%w: slow rule threshold must be non-negative", ErrInvalidConfig)
	}
	return nil
}
