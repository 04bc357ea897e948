// Package logger builds the slog loggers used across vocabscope.
//
// Every component receives a *slog.Logger by injection rather than reading
// global logger state; this package only constructs them from the log
// configuration (level and format).
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a logger writing to stderr with the given level and format.
// Format is "text" or "json"; anything else falls back to text.
func New(level string, format string) *slog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter creates a logger writing to w. Used by tests to capture output.
func NewWithWriter(w io.Writer, level string, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// NewDefaultLogger creates a text logger at the given level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps a config string to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
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
