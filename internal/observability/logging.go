// Package observability owns logger construction for gostratus.
//
// Library packages receive a *zap.Logger by injection; only the CLI uses
// the package-level CLILogger.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the process-wide logger used by CLI commands. It defaults
// to a no-op logger until Init is called.
var CLILogger = zap.NewNop()

// Init builds CLILogger from the configured level and profile.
//
// Profiles:
//   - STRUCTURED: JSON output for machine consumption (default)
//   - CONSOLE: human-readable development output
func Init(level, profile string) error {
	logger, err := NewLogger(level, profile)
	if err != nil {
		return err
	}
	CLILogger = logger
	return nil
}

// NewLogger constructs a logger for the given level and profile.
func NewLogger(level, profile string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch profile {
	case "", "STRUCTURED":
		cfg = zap.NewProductionConfig()
	case "CONSOLE":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown logging profile %q", profile)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Sync flushes any buffered log entries. Safe to call on exit.
func Sync() {
	_ = CLILogger.Sync()
}
