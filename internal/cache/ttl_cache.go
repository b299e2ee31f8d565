package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wonny/twstrategy/pkg/logger"
)

// Loader produces a fresh value for a key
type Loader[V any] func(ctx context.Context) (V, error)

// TTLCache is an in-memory snapshot cache keyed by string.
// An entry older than the TTL is a miss; concurrent loads of one key share a single call.
// ⭐ SSOT: 스냅샷 캐싱은 이 구조체에서만
type TTLCache[V any] struct {
	mu      sync.RWMutex
	name    string
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group
	logger  *logger.Logger
}

type entry[V any] struct {
	value     V
	fetchedAt time.Time
}

// Option configures a cache
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates a cache whose entries live for ttl
func New[V any](name string, ttl time.Duration, log *logger.Logger, opts ...Option) *TTLCache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &TTLCache[V]{
		name:    name,
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     o.now,
		logger:  log.WithField("cache", name),
	}
}

// Get returns a fresh value
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists || c.expired(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// FetchedAt returns when a key was last stored
func (c *TTLCache[V]) FetchedAt(key string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists {
		return time.Time{}, false
	}
	return e.fetchedAt, true
}

// Set stores a value stamped with the current time
func (c *TTLCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, fetchedAt: c.now()}
}

// GetOrLoad returns the cached value or calls loader and stores its result.
// Loader errors are returned and nothing is stored.
func (c *TTLCache[V]) GetOrLoad(ctx context.Context, key string, loader Loader[V]) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	result, err, shared := c.group.Do(key, func() (interface{}, error) {
		// Another caller may have stored it while we waited
		if v, ok := c.Get(key); ok {
			return v, nil
		}

		start := c.now()
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)

		c.logger.WithFields(map[string]interface{}{
			"key":      key,
			"duration": c.now().Sub(start).String(),
		}).Debug("Loaded cache entry")

		return v, nil
	})
	if err != nil {
		var zero V
		return zero, fmt.Errorf("load %s/%s: %w", c.name, key, err)
	}

	if shared {
		c.logger.WithField("key", key).Debug("Shared in-flight load")
	}

	return result.(V), nil
}

// Invalidate drops a key
func (c *TTLCache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear drops every entry
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry[V])
	c.logger.Debug("Cleared cache")
}

// Len returns the number of stored entries, fresh or not
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// CleanStale removes expired entries
func (c *TTLCache[V]) CleanStale() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, key)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Info("Cleaned stale cache entries")
	}

	return count
}

// Stats returns cache statistics
func (c *TTLCache[V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		Name:       c.name,
		TotalCount: len(c.entries),
		TTL:        c.ttl.String(),
	}
	for _, e := range c.entries {
		if c.expired(e) {
			stats.StaleCount++
		}
	}
	stats.FreshCount = stats.TotalCount - stats.StaleCount

	return stats
}

// Stats represents cache statistics
type Stats struct {
	Name       string `json:"name"`
	TTL        string `json:"ttl"`
	TotalCount int    `json:"total_count"`
	FreshCount int    `json:"fresh_count"`
	StaleCount int    `json:"stale_count"`
}

// expired must be called with the lock held
func (c *TTLCache[V]) expired(e entry[V]) bool {
	return c.now().Sub(e.fetchedAt) >= c.ttl
}
