// Package dashcache keeps the last dashboard payload on the user's machine and
// serves it until it is older than the configured window.
package dashcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Store is a persisted key-value space.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Entry is the stored form: when the payload was fetched, in epoch millis, and the payload.
type Entry[T any] struct {
	Timestamp int64 `json:"timestamp"`
	Data      T     `json:"data"`
}

type Cache[T any] struct {
	store  Store
	key    string
	window time.Duration
	now    func() time.Time
	log    *slog.Logger
}

func New[T any](store Store, key string, window time.Duration, log *slog.Logger) *Cache[T] {
	return &Cache[T]{
		store:  store,
		key:    key,
		window: window,
		now:    time.Now,
		log:    log,
	}
}

// WithClock replaces the time source.
func (c *Cache[T]) WithClock(now func() time.Time) *Cache[T] {
	c.now = now
	return c
}

// Load returns the cached payload while it is younger than the window, and
// otherwise calls fetch and stores its result under the current time. The
// boolean reports a cache hit. Fetch errors are returned as is.
func (c *Cache[T]) Load(ctx context.Context, fetch func(ctx context.Context) (T, error)) (T, bool, error) {
	const op = "dashcache.Load"

	if entry, ok := c.read(ctx); ok {
		age := c.now().UnixMilli() - entry.Timestamp
		if age < c.window.Milliseconds() {
			return entry.Data, true, nil
		}
	}

	data, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}

	raw, err := json.Marshal(Entry[T]{Timestamp: c.now().UnixMilli(), Data: data})
	if err != nil {
		return data, false, fmt.Errorf("%s: encode entry: %w", op, err)
	}

	// a failed write only costs a refetch next time
	if err := c.store.Set(ctx, c.key, raw); err != nil {
		c.log.Warn("cache write failed", slog.String("op", op), slog.String("key", c.key), slog.String("error", err.Error()))
	}

	return data, false, nil
}

// Clear drops the entry so the next Load fetches.
func (c *Cache[T]) Clear(ctx context.Context) error {
	if err := c.store.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("dashcache.Clear: %w", err)
	}
	return nil
}

// read treats unreadable and undecodable entries as missing.
func (c *Cache[T]) read(ctx context.Context) (Entry[T], bool) {
	var entry Entry[T]

	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		c.log.Warn("cache read failed", slog.String("key", c.key), slog.String("error", err.Error()))
		return entry, false
	}
	if !ok {
		return entry, false
	}

	if err := json.Unmarshal(raw, &entry); err != nil || entry.Timestamp <= 0 {
		c.log.Debug("ignoring corrupt cache entry", slog.String("key", c.key))
		return entry, false
	}

	return entry, true
}
