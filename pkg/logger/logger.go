// Package logger holds the process-wide zap logger of the migrate command
// and the tools built on it.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global *zap.Logger

// Init builds the global logger. level is a zap level name; format is json
// or console. Output goes to stderr so command results on stdout stay
// machine-readable.
func Init(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch f := strings.ToLower(format); f {
	case "json":
		cfg.Encoding = f
	case "console":
		cfg.Encoding = f
		cfg.Development = true
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	global = l.Named("pmo")
	return global, nil
}

// Set swaps the global logger and returns a func restoring the previous one.
func Set(l *zap.Logger) (restore func()) {
	prev := global
	global = l
	return func() { global = prev }
}

// L returns the global logger. Panics if not initialized.
func L() *zap.Logger {
	if global == nil {
		panic("logger not initialized: call logger.Init first")
	}
	return global
}

// Named returns a child of the global logger for one component, or a no-op
// logger before Init.
func Named(component string) *zap.Logger {
	if global == nil {
		return zap.NewNop()
	}
	return global.Named(component)
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}
