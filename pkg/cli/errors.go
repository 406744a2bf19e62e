package cli

import (
	"errors"
	"fmt"
)

// Exit codes returned by the underwriter command.
const (
	// ExitOK means the command succeeded and no result crossed the
	// --fail-on threshold.
	ExitOK = 0

	// ExitError is returned for configuration, I/O and usage errors.
	ExitError = 1

	// ExitFindings is returned when an evaluation or lint run produced
	// results at or above the requested severity.
	ExitFindings = 2
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// FindingsError reports that a command completed but its results crossed
// the failure threshold. It maps to ExitFindings.
type FindingsError struct {
	// Count is the number of results at or above the threshold.
	Count int

	// Threshold names the threshold, for example "alert".
	Threshold string
}

func (e *FindingsError) Error() string {
	return fmt.Sprintf("%d result(s) at or above %s", e.Count, e.Threshold)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var findings *FindingsError
	if errors.As(err, &findings) {
		return ExitFindings
	}
	return ExitError
}
