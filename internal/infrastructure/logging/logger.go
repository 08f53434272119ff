// Package logging provides structured logging utilities.
//
// Text logs use a compact console layout, coloured on terminals:
// [LEVEL] [component] [HH:MM:SS] message key=value
//
// JSON logs use slog's JSON handler unchanged.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/eshaffer321/ledgermatch/internal/infrastructure/config"
)

// ComponentKey is the attribute that scopes a logger to one part of the system
const ComponentKey = "component"

// NewLogger creates a structured logger on stderr based on config
func NewLogger(cfg config.LoggingConfig) *slog.Logger {
	return New(cfg, os.Stderr)
}

// New creates a structured logger writing to w
func New(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = NewConsoleHandler(w, opts)
	}
	return slog.New(handler)
}

// WithComponent scopes logger to a component (e.g. "engine", "api")
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(ComponentKey, component)
}

// ParseLevel maps a config string onto a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
