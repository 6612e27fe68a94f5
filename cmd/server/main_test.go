package main

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/bitesplus/bites-plus-server/internal/logging"
	"github.com/bitesplus/bites-plus-server/internal/models"
	"github.com/bitesplus/bites-plus-server/internal/store/memory"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// recordingStore is a memory store that also keeps logs and records the
// order of shutdown events.
type recordingStore struct {
	*memory.Store
	mu     sync.Mutex
	events []string
	logs   []models.SystemLog
}

func (r *recordingStore) event(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, name)
}

func (r *recordingStore) InsertLogs(_ context.Context, entries []models.SystemLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, entries...)
	r.events = append(r.events, "flush")
	return nil
}

func (r *recordingStore) DeleteLogsBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (r *recordingStore) Close(ctx context.Context) error {
	r.event("close")
	return r.Store.Close(ctx)
}

func TestShutdownFlushesLogsFromDrainingRequests(t *testing.T) {
	store := &recordingStore{Store: memory.New()}
	logHandler := logging.NewStoreHandler(store)
	logger := slog.New(logHandler)

	app := fiber.New()
	app.Hooks().OnShutdown(func() error {
		store.event("app_shutdown")
		logger.Error("request failed while draining")
		return nil
	})

	shutdown(app, logHandler, make(chan struct{}), store)

	assert.Equal(t, []string{"app_shutdown", "flush", "close"}, store.events)
	if assert.Len(t, store.logs, 1) {
		assert.Equal(t, "request failed while draining", store.logs[0].Message)
	}
}
