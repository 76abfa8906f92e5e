package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Production uses zap's JSON production
// preset; every other environment uses the development preset.
func NewLogger(environment, level, format string) (*zap.Logger, error) {
	if level == "" {
		return NewLoggerAt(environment, zap.AtomicLevel{}, format)
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return NewLoggerAt(environment, lvl, format)
}

// ParseLevel parses a level name into an adjustable level.
func ParseLevel(level string) (zap.AtomicLevel, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zap.NewAtomicLevelAt(lvl), nil
}

// NewLoggerAt is NewLogger with a caller-owned level, which can be changed
// while the logger is in use. A zero level keeps the preset's default.
func NewLoggerAt(environment string, level zap.AtomicLevel, format string) (*zap.Logger, error) {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	if level != (zap.AtomicLevel{}) {
		cfg.Level = level
	}
	if format != "" {
		cfg.Encoding = format
	}

	return cfg.Build(zap.Fields(zap.String("env", environment)))
}
