package cli

import (
	"fmt"

	gemerrors "github.com/schoolboyqueue/gemwrap/internal/errors"
)

// Exit codes for the gemwrap CLI.
// These codes support programmatic composition and CI/CD integration.
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates a generic failure (parse errors, upstream faults)
	ExitFailure = 1

	// ExitRetryExhausted indicates the retry limit was exhausted
	ExitRetryExhausted = 2

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitMissingExecutable indicates the gemini binary could not be found
	ExitMissingExecutable = 4

	// ExitTimeout indicates the query timed out
	ExitTimeout = 5
)

// exitError is a custom error type that carries an exit code.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// NewExitError creates a new exit error with the given code.
func NewExitError(code int) error {
	return &exitError{code: code}
}

// ExitCode returns the exit code from an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if e, ok := err.(*exitError); ok {
		return e.code
	}
	return ExitFailure
}

// classifyExit maps a query error onto the CLI exit code contract.
func classifyExit(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case gemerrors.IsNotFound(err):
		return ExitMissingExecutable
	case gemerrors.IsTimeout(err):
		return ExitTimeout
	case gemerrors.IsRetryable(err):
		return ExitRetryExhausted
	default:
		return ExitFailure
	}
}
