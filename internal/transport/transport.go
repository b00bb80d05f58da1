// Package transport builds Gemini CLI argument vectors and runs the CLI as
// a child process with timeout enforcement and separate stdout/stderr
// capture. It decides nothing about retryability: non-zero exits are
// returned as results for the caller to classify.
package transport

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"

	gemerrors "github.com/schoolboyqueue/gemwrap/internal/errors"
	"github.com/schoolboyqueue/gemwrap/internal/locator"
)

// DefaultGrace is how long a terminated child gets to exit cleanly before
// it is forcefully killed.
const DefaultGrace = 5 * time.Second

// Result is the raw outcome of one CLI invocation. It is consumed by the
// parser and error classifier immediately and never persisted.
type Result struct {
	// ExitCode is the process exit status (0 indicates success).
	ExitCode int

	// Stdout contains the captured standard output.
	Stdout string

	// Stderr contains the captured standard error, kept separate from
	// stdout so parsing stays unambiguous.
	Stderr string

	// Duration is the wall-clock time from start to completion.
	Duration time.Duration
}

// Runner executes the Gemini CLI. Safe for concurrent use; each Run spawns
// an independent child process.
type Runner struct {
	locator        *locator.Locator
	logger         *zap.Logger
	defaultTimeout time.Duration
	grace          time.Duration
}

// NewRunner creates a Runner. defaultTimeout applies when Options carries
// none; zero means no timeout at all.
func NewRunner(loc *locator.Locator, logger *zap.Logger, defaultTimeout time.Duration) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		locator:        loc,
		logger:         logger,
		defaultTimeout: defaultTimeout,
		grace:          DefaultGrace,
	}
}

// Run resolves the executable, builds the argument vector, and executes one
// attempt. On timeout the child (and its process group) is terminated before
// returning. A binary that vanished after resolution triggers exactly one
// cache invalidation and re-resolution, never an unbounded loop.
func (r *Runner) Run(ctx context.Context, prompt string, opts Options) (*Result, error) {
	path, err := r.locator.Resolve()
	if err != nil {
		return nil, err
	}

	args := BuildArgs(prompt, opts)
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = r.defaultTimeout
	}

	res, err := r.runOnce(ctx, path, args, timeout, opts.Verbose)
	if !isVanished(err) {
		return res, err
	}

	// The resolved binary disappeared between discovery and execution.
	r.logger.Warn("gemini CLI vanished after resolution, re-resolving",
		zap.String("path", path))
	r.locator.Invalidate()
	path, rerr := r.locator.Resolve()
	if rerr != nil {
		return nil, rerr
	}
	res, err = r.runOnce(ctx, path, args, timeout, opts.Verbose)
	if isVanished(err) {
		r.locator.Invalidate()
		return nil, gemerrors.NewNotFoundError([]string{path})
	}
	return res, err
}

// runOnce spawns one child process and waits for exit, deadline, or
// cancellation.
func (r *Runner) runOnce(ctx context.Context, path string, args []string, timeout time.Duration, verbose bool) (*Result, error) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, path, args...)
	setProcessGroup(cmd)
	// On cancellation ask the whole group to terminate. WaitDelay unblocks
	// Wait after the grace window; the exit paths below then sweep the
	// group forcefully so no descendant survives the call.
	cmd.Cancel = func() error { return terminate(cmd) }
	cmd.WaitDelay = r.grace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), "GEMINI_SDK=1", "CLAIF_PROVIDER=gemini")

	if verbose {
		r.logger.Debug("running gemini CLI",
			zap.String("path", path),
			zap.Strings("args", args),
			zap.Duration("timeout", timeout))
	}

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	switch {
	case ctx.Err() != nil:
		// Caller cancellation propagates as-is. Sweep the group so no
		// descendant outlives the call.
		killGroup(cmd)
		return nil, ctx.Err()
	case timedOut(runCtx, err):
		killGroup(cmd)
		return nil, gemerrors.NewTimeoutError(timeout, elapsed)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if gemerrors.As(err, &exitErr) {
			// Non-zero exit is a result, not an error; the retry policy
			// classifies the captured stderr.
			return &Result{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				Duration: elapsed,
			}, nil
		}
		return nil, err
	}

	return &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}, nil
}

// timedOut reports whether a finished run counts as a timeout: the per-run
// deadline fired and the child did not exit cleanly. A child that completed
// in the same instant the deadline expired still yields its Result.
func timedOut(runCtx context.Context, runErr error) bool {
	return runErr != nil && runCtx.Err() == context.DeadlineExceeded
}

// isVanished reports whether err means the executable no longer exists.
func isVanished(err error) bool {
	return err != nil &&
		(gemerrors.Is(err, exec.ErrNotFound) || gemerrors.Is(err, fs.ErrNotExist))
}
