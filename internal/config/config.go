package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/schoolboyqueue/gemwrap/internal/retry"
	"github.com/schoolboyqueue/gemwrap/internal/transport"
)

// Configuration holds the gemwrap settings merged from config files and
// environment variables.
type Configuration struct {
	CLIPath        string            `koanf:"cli_path"`
	Model          string            `koanf:"model" validate:"required"`
	Temperature    *float64          `koanf:"temperature"`
	AutoApprove    bool              `koanf:"auto_approve"`
	YesMode        bool              `koanf:"yes_mode"`
	Timeout        int               `koanf:"timeout" validate:"min=1,max=86400"`
	MaxRetries     int               `koanf:"max_retries" validate:"min=1,max=10"`
	RetryBaseDelay int               `koanf:"retry_base_delay" validate:"min=1,max=300"`
	MaxRetryWait   int               `koanf:"max_retry_wait" validate:"min=1,max=3600"`
	NoRetry        bool              `koanf:"no_retry"`
	Estimator      string            `koanf:"estimator" validate:"oneof=words tiktoken"`
	LogLevel       string            `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat      string            `koanf:"log_format" validate:"oneof=console json"`
	ModelAliases   map[string]string `koanf:"model_aliases"`
	Verbose        bool              `koanf:"verbose"`
}

// Load loads configuration from global, local, and environment sources.
// Priority: Environment variables > Local config > Global config > Defaults
func Load(localConfigPath string) (*Configuration, error) {
	k := koanf.New(".")

	defaults := GetDefaults()
	for key, value := range defaults {
		k.Set(key, value)
	}

	// Load global config if it exists
	homeDir, err := os.UserHomeDir()
	if err == nil {
		globalPath := filepath.Join(homeDir, ".gemwrap", "config.json")
		if _, err := os.Stat(globalPath); err == nil {
			if err := k.Load(file.Provider(globalPath), json.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load global config: %w", err)
			}
		}
	}

	// Load local config if it exists
	if localConfigPath != "" {
		if _, err := os.Stat(localConfigPath); err == nil {
			if err := k.Load(file.Provider(localConfigPath), json.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load local config: %w", err)
			}
		}
	}

	// Override with environment variables (highest priority)
	k.Load(env.Provider("GEMWRAP_", ".", envTransform), nil)

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Temperature != nil && (*cfg.Temperature < 0 || *cfg.Temperature > 2) {
		return nil, fmt.Errorf("config validation failed: temperature %v outside accepted range [0, 2]", *cfg.Temperature)
	}

	cfg.CLIPath = expandHomePath(cfg.CLIPath)

	return &cfg, nil
}

// envTransform converts environment variable names to config keys.
// Example: GEMWRAP_MAX_RETRIES -> max_retries
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "GEMWRAP_"))
}

// expandHomePath expands ~ to the user's home directory.
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}

// Options builds the per-request option set implied by this configuration.
func (c *Configuration) Options() transport.Options {
	opts := transport.DefaultOptions()
	opts.Model = c.Model
	opts.Temperature = c.Temperature
	opts.AutoApprove = c.AutoApprove
	opts.YesMode = c.YesMode
	opts.Timeout = time.Duration(c.Timeout) * time.Second
	opts.NoRetry = c.NoRetry
	opts.Verbose = c.Verbose
	return opts
}

// RetryPolicy builds the retry policy implied by this configuration.
func (c *Configuration) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:  c.MaxRetries,
		BaseDelay:    time.Duration(c.RetryBaseDelay) * time.Second,
		MaxTotalWait: time.Duration(c.MaxRetryWait) * time.Second,
		NoRetry:      c.NoRetry,
	}
}
