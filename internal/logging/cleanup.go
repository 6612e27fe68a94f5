package logging

import (
	"context"
	"log/slog"
	"time"
)

// StartCleanup runs a daily goroutine that deletes stored logs older than 30 days.
func StartCleanup(sink Sink, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cleanupOnce(sink, time.Now().AddDate(0, 0, -30))
			case <-done:
				return
			}
		}
	}()
}

func cleanupOnce(sink Sink, cutoff time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	deleted, err := sink.DeleteLogsBefore(ctx, cutoff)
	if err != nil {
		slog.Error("log cleanup failed", "error", err)
	} else if deleted > 0 {
		slog.Info("log cleanup completed", "deleted", deleted)
	}
}
