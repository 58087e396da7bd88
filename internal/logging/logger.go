// Package logging defines a minimal structured-logging interface used across
// the project. Implementations wrap slog, zap and logrus.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "teams loaded", "count", n, "current", sectID)
type Logger interface {
	// Debug logs verbose diagnostics.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Supported drivers for New.
const (
	DriverSlog   = "slog"
	DriverZap    = "zap"
	DriverLogrus = "logrus"
)

// New builds a Logger for the given driver writing to w at the given level
// ("debug", "info", "warn", "error"). An empty driver selects slog.
func New(driver, level string, w io.Writer) (Logger, error) {
	switch strings.ToLower(driver) {
	case "", DriverSlog:
		h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel(level)})
		return NewSlogLogger(slog.New(h)), nil
	case DriverZap:
		return newZapLogger(w, level), nil
	case DriverLogrus:
		return newLogrusLogger(w, level), nil
	default:
		return nil, fmt.Errorf("unknown log driver %q", driver)
	}
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
