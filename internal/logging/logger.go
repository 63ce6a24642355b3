// Package logging defines the structured-logging interface used across the
// client and the dev backend, with slog and zap adapters.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "otp issued", "email", email)
type Logger interface {
	// Debug logs diagnostic details that are off in normal runs.
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

// New builds a Logger for the given format. "json" and "zap" select the zap
// production encoder, anything else a slog text handler on stderr.
func New(format string) (Logger, error) {
	switch strings.ToLower(format) {
	case "json", "zap":
		z, err := zap.NewProduction()
		if err != nil {
			return nil, err
		}
		return NewZapLogger(z), nil
	default:
		h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
		return NewSlogLogger(slog.New(h)), nil
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
