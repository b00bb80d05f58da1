package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger from level/format settings. Format is
// "console" or "json"; console uses the development encoder config so
// interactive runs stay readable.
func NewLogger(level, format string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.Set(strings.ToLower(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch strings.ToLower(format) {
	case "json":
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
	case "console", "":
		cfg = zap.NewDevelopmentConfig()
		cfg.Encoding = "console"
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	return cfg.Build()
}
