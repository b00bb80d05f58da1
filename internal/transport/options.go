package transport

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Options describes one invocation of the Gemini CLI. The zero value is not
// usable; construct with DefaultOptions so the approval flags default on.
type Options struct {
	// Model is the CLI model name. Empty means the CLI's own default.
	Model string `validate:"omitempty"`

	// Temperature is the sampling temperature. The Gemini CLI accepts 0-2;
	// values outside that range are a caller error, not a transport failure.
	Temperature *float64 `validate:"omitempty"`

	// MaxOutputTokens bounds the response size when positive.
	MaxOutputTokens int `validate:"gte=0"`

	// SystemPrompt is an optional system instruction.
	SystemPrompt string

	// AutoApprove suppresses interactive confirmation in the CLI.
	AutoApprove bool

	// YesMode answers yes to all CLI prompts.
	YesMode bool

	// Timeout bounds one attempt. Zero falls back to the process-wide default.
	Timeout time.Duration `validate:"gte=0"`

	// NoRetry disables the retry policy: every failure is fatal.
	NoRetry bool

	// Verbose enables debug logging of the exact command being run.
	Verbose bool
}

// DefaultOptions returns Options with the CLI approval flags enabled, which
// is required for non-interactive use.
func DefaultOptions() Options {
	return Options{
		AutoApprove: true,
		YesMode:     true,
	}
}

var validate = validator.New()

// Validate checks option invariants. Temperature bounds are checked here
// rather than by tag because the field is a pointer.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return err
	}
	if o.Temperature != nil && (*o.Temperature < 0 || *o.Temperature > 2) {
		return fmt.Errorf("temperature %v outside accepted range [0, 2]", *o.Temperature)
	}
	return nil
}
