package config

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Production emits JSON for the log
// pipeline; development emits text with source locations, which makes
// tracing a single websocket session through connect/heartbeat/evict
// lines much easier.
func NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: env == "development",
	}

	var handler slog.Handler
	if env == "production" {
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler).With(slog.String("service", "review-service"))
}
