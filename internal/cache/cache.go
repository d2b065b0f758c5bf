package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joshua-takyi/eventhub/internal/clock"
)

// DefaultTTL is how long an entry is served without asking the loader again.
const DefaultTTL = 5 * time.Minute

// Result describes how GetOrFetch satisfied a lookup.
type Result string

const (
	ResultHit   Result = "hit"
	ResultMiss  Result = "miss"
	ResultStale Result = "stale"
	ResultError Result = "error"
)

type entry[T any] struct {
	storedAt time.Time
	value    T
}

// Cache is a keyed, time-bounded store with stale fallback when the loader fails.
// It is safe for concurrent use.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]
	ttl     time.Duration
	clock   clock.Clock
	logger  *slog.Logger

	// OnLookup is called once per GetOrFetch with the outcome. Optional.
	OnLookup func(Result)
}

func New[T any](c clock.Clock, ttl time.Duration, logger *slog.Logger) *Cache[T] {
	if c == nil {
		c = clock.NewSystem()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache[T]{
		entries: make(map[string]entry[T]),
		ttl:     ttl,
		clock:   c,
		logger:  logger,
	}
}

// Get returns the entry for key if it is still fresh.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.clock.Now().Sub(e.storedAt) >= c.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	c.entries[key] = entry[T]{storedAt: c.clock.Now(), value: value}
	c.mu.Unlock()
}

// GetOrFetch serves a fresh entry, otherwise calls loader and writes the result through.
// If loader fails and any entry exists, even an expired one, that entry is returned instead.
// The loader runs without holding the lock, so concurrent misses on one key may both load.
func (c *Cache[T]) GetOrFetch(ctx context.Context, key string, loader func(ctx context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	e, found := c.entries[key]
	now := c.clock.Now()
	c.mu.Unlock()

	if found && now.Sub(e.storedAt) < c.ttl {
		c.observe(ResultHit)
		return e.value, nil
	}

	v, err := loader(ctx)
	if err != nil {
		if found {
			c.logger.Warn("loader failed, serving stale entry",
				"key", key,
				"age", now.Sub(e.storedAt),
				"error", err,
			)
			c.observe(ResultStale)
			return e.value, nil
		}
		c.observe(ResultError)
		var zero T
		return zero, err
	}

	c.Set(key, v)
	c.observe(ResultMiss)
	return v, nil
}

func (c *Cache[T]) observe(r Result) {
	if c.OnLookup != nil {
		c.OnLookup(r)
	}
}
