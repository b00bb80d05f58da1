// Package retry wraps one transport-plus-parse cycle with bounded
// exponential backoff. Failures are classified by diagnostic text:
// quota/rate-limit/transient-server markers are retried, everything else is
// fatal and propagates immediately. Retry state is scoped to a single
// logical call and never shared.
package retry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	gemerrors "github.com/schoolboyqueue/gemwrap/internal/errors"
)

// Policy bounds the retry loop for one logical call.
type Policy struct {
	// MaxAttempts is the total attempt budget, including the first try.
	MaxAttempts int

	// BaseDelay is multiplied exponentially by the attempt count.
	BaseDelay time.Duration

	// MaxTotalWait caps the cumulative backoff delay across all attempts.
	MaxTotalWait time.Duration

	// NoRetry treats every failure as fatal regardless of classification.
	NoRetry bool
}

// DefaultPolicy mirrors the CLI defaults: three attempts, one second base
// delay, thirty seconds of cumulative waiting at most.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		BaseDelay:    time.Second,
		MaxTotalWait: 30 * time.Second,
	}
}

// Do invokes fn until it succeeds, fails fatally, or the budget runs out.
// Attempts are strictly sequential. Backoff delays are interruptible by ctx.
// When retries are exhausted, the returned error states the attempt count.
func Do[T any](ctx context.Context, policy Policy, logger *zap.Logger, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 || policy.NoRetry {
		maxAttempts = 1
	}

	var waited time.Duration
	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attempts = attempt
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if policy.NoRetry || !classify(err) {
			return zero, err
		}
		if attempt == maxAttempts {
			break
		}

		delay := policy.BaseDelay << (attempt - 1)
		if policy.MaxTotalWait > 0 && waited+delay > policy.MaxTotalWait {
			logger.Debug("retry wait budget exhausted",
				zap.Duration("waited", waited),
				zap.Duration("budget", policy.MaxTotalWait))
			break
		}
		waited += delay

		logger.Debug("transient gemini CLI failure, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, exhausted(lastErr, attempts)
}

// classify decides retryability: typed errors first, then diagnostic text.
func classify(err error) bool {
	var upstream *gemerrors.UpstreamError
	if gemerrors.As(err, &upstream) {
		return upstream.Retryable
	}
	if gemerrors.IsTimeout(err) {
		return true
	}
	if gemerrors.IsNotFound(err) || gemerrors.IsParse(err) {
		return false
	}
	if gemerrors.Is(err, context.Canceled) || gemerrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return RetryableText(err.Error())
}

// exhausted annotates the final error with the number of attempts made.
func exhausted(lastErr error, attempts int) error {
	var upstream *gemerrors.UpstreamError
	if gemerrors.As(lastErr, &upstream) {
		annotated := *upstream
		annotated.Attempts = attempts
		return &annotated
	}
	return &Exhausted{Attempts: attempts, Last: lastErr}
}

// Exhausted reports that the retry budget ran out on a non-upstream error
// (typically a timeout on every attempt).
type Exhausted struct {
	Attempts int
	Last     error
}

func (e *Exhausted) Error() string {
	return fmt.Sprintf("gemini CLI failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *Exhausted) Unwrap() error {
	return e.Last
}
