// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for all CLI commands in watchlog.
//
// STANDARDIZED PATTERN:
//   - ALWAYS return errors (never just print and return nil)
//   - Let the caller decide how to display errors
//   - Use structured error types for better error handling
//
// ERROR HANDLING: Errors must not be silently ignored

package cli

import (
	"errors"
	"fmt"
	"os"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
)

// =============================================================================
// ERROR TYPES FOR STRUCTURED ERROR HANDLING
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "history", "config")
	Action  string // Action being performed (e.g., "query", "set")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NewCommandError builds a CommandError wrapping an underlying error.
func NewCommandError(command, action, reason string, err error) *CommandError {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// NewValidationError builds a ValidationError with an example of valid input.
func NewValidationError(field, value, reason, example string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason, Example: example}
}

// GetExitCode maps an error to its process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return ExitUsageError
	}

	if os.IsNotExist(err) {
		return ExitNotFoundError
	}

	return ExitGeneralError
}

// Exit prints the error to stderr and exits with the mapped code.
func Exit(err error) {
	if err == nil {
		os.Exit(ExitSuccess)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(GetExitCode(err))
}
