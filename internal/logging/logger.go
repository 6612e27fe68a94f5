package logging

import (
	"log/slog"
	"os"
)

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(NewJSONHandler()))
}

// NewJSONHandler is the stdout handler every configuration starts from.
func NewJSONHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}

// WithSink sends ERROR+ records to sink as well as stdout. The returned
// handler must be stopped on shutdown.
func WithSink(sink Sink) *StoreHandler {
	h := NewStoreHandler(sink)
	slog.SetDefault(slog.New(NewMultiHandler(NewJSONHandler(), h)))
	return h
}
