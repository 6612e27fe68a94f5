package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/bitesplus/bites-plus-server/internal/models"
	"github.com/google/uuid"
)

const batchSize = 50

// Sink persists log records. The Mongo and Postgres listing stores both
// provide one.
type Sink interface {
	InsertLogs(ctx context.Context, entries []models.SystemLog) error
	DeleteLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// StoreHandler is an slog.Handler that batches ERROR+ logs into a Sink.
// Handlers derived with WithAttrs share its buffer.
type StoreHandler struct {
	batch *batch
	attrs []slog.Attr
}

type batch struct {
	sink     Sink
	mu       sync.Mutex
	buffer   []models.SystemLog
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewStoreHandler(sink Sink) *StoreHandler {
	return newStoreHandler(sink, 5*time.Second)
}

func newStoreHandler(sink Sink, every time.Duration) *StoreHandler {
	b := &batch{
		sink:   sink,
		buffer: make([]models.SystemLog, 0, batchSize),
		ticker: time.NewTicker(every),
		done:   make(chan struct{}),
	}
	b.wg.Add(1)
	go b.flushLoop()
	return &StoreHandler{batch: b}
}

func (b *batch) flushLoop() {
	defer b.wg.Done()
	for {
		select {
		case <-b.ticker.C:
			b.flush()
		case <-b.done:
			b.flush()
			return
		}
	}
}

func (b *batch) flush() {
	b.mu.Lock()
	if len(b.buffer) == 0 {
		b.mu.Unlock()
		return
	}
	entries := b.buffer
	b.buffer = make([]models.SystemLog, 0, batchSize)
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.sink.InsertLogs(ctx, entries); err != nil {
		// Warn stays below this handler's level, so it cannot loop back here.
		slog.Warn("failed to flush system logs", "error", err, "count", len(entries))
	}
}

func (b *batch) add(entry models.SystemLog) {
	b.mu.Lock()
	b.buffer = append(b.buffer, entry)
	full := len(b.buffer) >= batchSize
	b.mu.Unlock()

	if full {
		go b.flush()
	}
}

// Stop flushes what is buffered and ends the flush loop.
func (h *StoreHandler) Stop() {
	b := h.batch
	b.stopOnce.Do(func() {
		b.ticker.Stop()
		close(b.done)
	})
	b.wg.Wait()
}

// Enabled only handles ERROR and above.
func (h *StoreHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *StoreHandler) Handle(_ context.Context, record slog.Record) error {
	now := time.Now().UTC()
	entry := models.SystemLog{
		ID:        uuid.NewString(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
		CreatedAt: now,
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = now
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			entry.RequestID = a.Value.String()
		case "user_email":
			s := a.Value.String()
			entry.UserEmail = &s
		case "action", "op":
			entry.Action = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		case "latency_ms":
			switch v := a.Value.Any().(type) {
			case float64:
				entry.LatencyMs = int(math.Round(v))
			case int64:
				entry.LatencyMs = int(v)
			}
		default:
			extra[a.Key] = jsonSafe(a.Value.Any())
		}
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)
	if len(extra) > 0 {
		entry.Extra = extra
	}

	h.batch.add(entry)
	return nil
}

func (h *StoreHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &StoreHandler{batch: h.batch, attrs: merged}
}

// WithGroup is a no-op: stored records are flat.
func (h *StoreHandler) WithGroup(string) slog.Handler {
	return h
}

// jsonSafe keeps values that encode cleanly and stringifies the rest.
func jsonSafe(v interface{}) interface{} {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if _, err := json.Marshal(v); err != nil {
		return slog.AnyValue(v).String()
	}
	return v
}
