package config

import (
	"io"
	"log/slog"
)

// NewLogger builds the process logger. Production logs JSON, everything else
// logs text with source locations. level overrides the per-environment default.
func NewLogger(w io.Writer, env string, level *slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: env != "production",
		Level:     slog.LevelDebug,
	}
	if env == "production" {
		opts.Level = slog.LevelInfo
	}
	if level != nil {
		opts.Level = *level
	}

	if env == "production" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
