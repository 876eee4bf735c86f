// Package cache provides an in-memory TTL cache with single-flight loading.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL matches the upstream snapshot refresh cadence.
const DefaultTTL = 15 * time.Minute

// LoadFunc produces a fresh value for a key.
type LoadFunc[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value   V
	expires time.Time
}

// Stats counts cache activity.
type Stats struct {
	Hits   int64 `json:"hits"`
	Stale  int64 `json:"stale"`
	Misses int64 `json:"misses"`
	Errors int64 `json:"errors"`
}

// Cache maps keys to (value, expiry). At most one load per key runs at a
// time; while a refresh of an expired key is in flight, other readers get
// the stale value.
type Cache[K comparable, V any] struct {
	ttl time.Duration
	now func() time.Time

	mu         sync.Mutex
	entries    map[K]entry[V]
	refreshing map[K]bool
	stats      Stats

	group singleflight.Group
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a cache whose entries live for ttl.
func New[K comparable, V any](ttl time.Duration, opts ...Option) *Cache[K, V] {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[K, V]{
		ttl:        ttl,
		now:        o.now,
		entries:    make(map[K]entry[V]),
		refreshing: make(map[K]bool),
	}
}

// TTL returns the entry lifetime.
func (c *Cache[K, V]) TTL() time.Duration { return c.ttl }

// Get returns a fresh value for key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expires) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with a full TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expires: c.now().Add(c.ttl)}
}

// Invalidate drops key.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateAll drops every entry.
func (c *Cache[K, V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}

// Len returns the number of stored entries, fresh or stale.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a copy of the counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// GetOrLoad returns the cached value for key, loading it when missing or
// expired. A failed load is not cached and leaves any stale entry in place.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, key K, load LoadFunc[V]) (V, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && c.now().Before(e.expires) {
		c.stats.Hits++
		c.mu.Unlock()
		return e.value, nil
	}
	if ok && c.refreshing[key] {
		c.stats.Stale++
		c.mu.Unlock()
		return e.value, nil
	}
	c.refreshing[key] = true
	c.stats.Misses++
	c.mu.Unlock()

	v, err, _ := c.group.Do(fmt.Sprint(key), func() (any, error) {
		defer func() {
			c.mu.Lock()
			delete(c.refreshing, key)
			c.mu.Unlock()
		}()
		val, err := load(ctx)
		if err != nil {
			return val, err
		}
		c.Set(key, val)
		return val, nil
	})
	if err != nil {
		c.mu.Lock()
		c.stats.Errors++
		c.mu.Unlock()
		var zero V
		return zero, err
	}
	return v.(V), nil
}
