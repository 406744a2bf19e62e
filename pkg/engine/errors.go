package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNilRule indicates a nil entry in a rule list.
	ErrNilRule = errors.New("rule is nil")

	// ErrInvalidConfig indicates invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")
)

// UnknownValidatorError indicates a rule names a validator that is not
// registered.
type UnknownValidatorError struct {
	Name string
}

// Error returns the error message.
func (e *UnknownValidatorError) Error() string {
	return fmt.Sprintf("unknown validator %q", e.Name)
}

// DuplicateValidatorError indicates a validator name was registered twice.
type DuplicateValidatorError struct {
	Name string
}

// Error returns the error message.
func (e *DuplicateValidatorError) Error() string {
	return fmt.Sprintf("validator %q is already registered", e.Name)
}

// ValidatorError wraps a failure raised while a validator evaluated a rule.
// Recovered panics are reported through it as well.
type ValidatorError struct {
	RuleID    string
	Validator string
	Cause     error
}

// Error returns the error message.
func (e *ValidatorError) Error() string {
	return fmt.Sprintf("rule %s: validator %s: %v", e.RuleID, e.Validator, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ValidatorError) Unwrap() error {
	return e.Cause
}

// message is the text surfaced in an ERROR result.
func message(err error) string {
	var verr *ValidatorError
	if errors.As(err, &verr) && verr.Cause != nil {
		return verr.Cause.Error()
	}
	return err.Error()
}
