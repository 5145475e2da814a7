// Package log provides structured logging for the toolkit's machine learning
// operations.
//
// It defines a minimal, slog-compatible Logger interface so that the
// optimization and preprocessing packages never depend on a concrete logging
// backend, plus standard attribute keys for metric-learning runs and test
// helpers for asserting on log output.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("nca")
//	logger.Info("optimization started",
//	    log.OptimizerKey, "sgd",
//	    log.SamplesKey, 1000,
//	    log.FeaturesKey, 5,
//	)
package log

import (
	"context"
)

// Logger is a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key-value pairs, as in slog. With returns a child
// logger carrying pre-populated fields, which the optimizers use to tag every
// record with their component name.
type Logger interface {
	// Debug logs detailed diagnostic information, such as per-pass objective
	// values during optimization.
	Debug(msg string, fields ...any)

	// Info logs general operational information about the run.
	Info(msg string, fields ...any)

	// Warn logs potentially problematic conditions that do not stop the run.
	Warn(msg string, fields ...any)

	// Error logs error conditions. If an error value appears among the
	// fields under the "error" key, stack trace information may be attached
	// by the handler.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Use it to skip expensive attribute construction.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, value-compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers. It exists so tests can
// substitute a capturing implementation for the default slog-backed one.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for loggers from this provider.
	SetLevel(level Level)
}
