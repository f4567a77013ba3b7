// Package logging builds the slog loggers used by both transports.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text logger writing to w (stderr when nil). Debug enables
// debug-level records.
func New(w io.Writer, debug bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Component returns a child logger tagged with the component name.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", name)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Redact renders an API key for logs. The full key is never printed.
func Redact(key string, debug bool) string {
	if key == "" {
		return "[unset]"
	}
	if !debug || len(key) < 8 {
		return "[redacted]"
	}
	return "****" + key[len(key)-4:]
}
