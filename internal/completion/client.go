// Package completion adapts the Gemini CLI transport into OpenAI-style chat
// completions. Each call is a stateless, one-shot request: resolve, build,
// spawn, parse, retried under the configured policy, then shaped into a
// completion value or a synthesized chunk sequence.
package completion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	gemerrors "github.com/schoolboyqueue/gemwrap/internal/errors"
	"github.com/schoolboyqueue/gemwrap/internal/parse"
	"github.com/schoolboyqueue/gemwrap/internal/retry"
	"github.com/schoolboyqueue/gemwrap/internal/tokens"
	"github.com/schoolboyqueue/gemwrap/internal/transport"
)

// Settings configures a Client.
type Settings struct {
	// DefaultModel is used when a request names no model.
	DefaultModel string

	// DefaultTemperature is applied when a request sets none. Nil leaves
	// the CLI's own default in place.
	DefaultTemperature *float64

	// Aliases maps caller-facing model names to the CLI's model names.
	// Unmapped names pass through unchanged.
	Aliases map[string]string

	// Policy bounds the retry loop. Zero value means DefaultPolicy.
	Policy retry.Policy

	// Estimator supplies token counts when the CLI reports none. Nil means
	// the word-count heuristic.
	Estimator tokens.Estimator

	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

// Client is the completion adapter. Safe for concurrent use; calls share
// only the transport's executable cache.
type Client struct {
	runner    *transport.Runner
	settings  Settings
	estimator tokens.Estimator
	logger    *zap.Logger
}

// NewClient creates a Client around a transport runner.
func NewClient(runner *transport.Runner, settings Settings) *Client {
	if settings.Policy.MaxAttempts == 0 {
		settings.Policy = retry.DefaultPolicy()
	}
	estimator := settings.Estimator
	if estimator == nil {
		estimator = tokens.WordCount{}
	}
	logger := settings.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		runner:    runner,
		settings:  settings,
		estimator: estimator,
		logger:    logger,
	}
}

// Complete runs one completion call and returns the assembled value.
func (c *Client) Complete(ctx context.Context, prompt string, opts transport.Options) (*ChatCompletion, error) {
	model, answer, err := c.run(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}

	return &ChatCompletion{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  objectCompletion,
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []Choice{{
			Message:      Message{Role: RoleAssistant, Content: answer.Content},
			FinishReason: FinishStop,
		}},
		Usage: c.usage(model, prompt, answer),
	}, nil
}

// CompleteStream runs one completion call and returns the answer as a
// finite, non-restartable chunk sequence. The CLI is not natively streamed:
// the full answer is obtained first and chunks are synthesized from it.
func (c *Client) CompleteStream(ctx context.Context, prompt string, opts transport.Options) (*Stream, error) {
	model, answer, err := c.run(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}
	return newStream(model, answer.Content), nil
}

// run executes the retry-wrapped transport-and-parse cycle and returns the
// caller-facing model name alongside the parsed answer.
func (c *Client) run(ctx context.Context, prompt string, opts transport.Options) (string, *parse.Answer, error) {
	if err := opts.Validate(); err != nil {
		return "", nil, err
	}

	model := opts.Model
	if model == "" {
		model = c.settings.DefaultModel
	}
	if opts.Temperature == nil && c.settings.DefaultTemperature != nil {
		t := *c.settings.DefaultTemperature
		opts.Temperature = &t
	}
	// The CLI sees the resolved alias; the caller-facing name is reported
	// back in the completion value.
	opts.Model = c.resolveAlias(model)

	policy := c.settings.Policy
	policy.NoRetry = policy.NoRetry || opts.NoRetry

	answer, err := retry.Do(ctx, policy, c.logger, func(ctx context.Context) (*parse.Answer, error) {
		return c.attempt(ctx, prompt, opts)
	})
	if err != nil {
		return "", nil, err
	}
	return model, answer, nil
}

// attempt performs one transport-plus-parse cycle.
func (c *Client) attempt(ctx context.Context, prompt string, opts transport.Options) (*parse.Answer, error) {
	res, err := c.runner.Run(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &gemerrors.UpstreamError{
			Stderr:    res.Stderr,
			ExitCode:  res.ExitCode,
			Retryable: retry.RetryableText(res.Stderr),
		}
	}
	return parse.Parse(res.Stdout)
}

// resolveAlias maps a caller-facing model name to the CLI's name.
func (c *Client) resolveAlias(model string) string {
	if cli, ok := c.settings.Aliases[model]; ok {
		return cli
	}
	return model
}

// usage prefers counts reported by the CLI; otherwise both sides are
// estimated and flagged as such.
func (c *Client) usage(model, prompt string, answer *parse.Answer) Usage {
	if answer.Usage != nil {
		return Usage{
			PromptTokens:     answer.Usage.PromptTokens,
			CompletionTokens: answer.Usage.CompletionTokens,
			TotalTokens:      answer.Usage.TotalTokens,
		}
	}
	promptTokens := c.estimator.Count(model, prompt)
	completionTokens := c.estimator.Count(model, answer.Content)
	return Usage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		Estimated:        true,
	}
}
