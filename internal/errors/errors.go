// Package errors defines the typed failure modes of the gemwrap core:
// executable discovery failures, subprocess timeouts, unparseable output,
// and upstream (Gemini CLI) failures split into retryable and fatal.
// Every error carries enough context to be actionable without re-running
// with elevated verbosity.
package errors

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// NotFoundError indicates the Gemini CLI executable could not be located,
// or disappeared between resolution and execution.
type NotFoundError struct {
	// Searched lists every location that was checked, in search order.
	Searched []string
}

func (e *NotFoundError) Error() string {
	if len(e.Searched) == 0 {
		return "gemini CLI not found (set GEMINI_CLI_PATH or install the gemini CLI)"
	}
	return fmt.Sprintf("gemini CLI not found; searched: %s (set GEMINI_CLI_PATH or install the gemini CLI)",
		strings.Join(e.Searched, ", "))
}

// NewNotFoundError creates a NotFoundError recording the searched locations.
func NewNotFoundError(searched []string) *NotFoundError {
	return &NotFoundError{Searched: searched}
}

// TimeoutError indicates a subprocess attempt exceeded its deadline.
// It unwraps to context.DeadlineExceeded so errors.Is works as expected.
type TimeoutError struct {
	// Limit is the configured per-attempt timeout.
	Limit time.Duration
	// Elapsed is the wall-clock time the attempt actually ran.
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("gemini CLI timed out after %s (limit %s) (hint: increase timeout in config)",
		e.Elapsed.Round(time.Millisecond), e.Limit)
}

func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// NewTimeoutError creates a TimeoutError with the configured limit and
// observed elapsed time.
func NewTimeoutError(limit, elapsed time.Duration) *TimeoutError {
	return &TimeoutError{Limit: limit, Elapsed: elapsed}
}

// ParseError indicates the CLI exited successfully but its output could not
// be interpreted as an answer. Empty output is a ParseError, never an empty
// success. ParseError is never retried.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "unusable gemini CLI output: " + e.Reason
}

// NewParseError creates a ParseError with the given reason.
func NewParseError(reason string) *ParseError {
	return &ParseError{Reason: reason}
}

// UpstreamError represents a non-zero exit from the Gemini CLI. Retryable
// reports the classification result; Attempts is filled in by the retry
// policy once the budget is exhausted.
type UpstreamError struct {
	// Stderr holds the diagnostic text captured from the CLI.
	Stderr string
	// ExitCode is the subprocess exit status.
	ExitCode int
	// Retryable is true when the stderr text matched a transient marker.
	Retryable bool
	// Attempts is the number of attempts made before surfacing, zero until
	// the retry policy gives up.
	Attempts int
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("gemini CLI failed (exit %d): %s", e.ExitCode, excerpt(e.Stderr))
	if e.Attempts > 1 {
		msg = fmt.Sprintf("%s (after %d attempts)", msg, e.Attempts)
	}
	return msg
}

// excerpt trims stderr to a single readable line for error messages.
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "no diagnostic output"
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " ..."
	}
	const max = 200
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return As(err, &target)
}

// IsTimeout reports whether err is a TimeoutError.
func IsTimeout(err error) bool {
	var target *TimeoutError
	return As(err, &target)
}

// IsParse reports whether err is a ParseError.
func IsParse(err error) bool {
	var target *ParseError
	return As(err, &target)
}

// IsRetryable reports whether err is an UpstreamError classified as
// transient, or a TimeoutError. All other errors are fatal.
func IsRetryable(err error) bool {
	var upstream *UpstreamError
	if As(err, &upstream) {
		return upstream.Retryable
	}
	return IsTimeout(err)
}
