// Package cache provides a generic, size-bounded in-memory cache with
// per-entry TTLs and least-recently-used eviction.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// DefaultTTL is used when Set is called with a non-positive TTL.
const DefaultTTL = time.Hour

type entry[T any] struct {
	key          string
	value        T
	size         int64
	expiresAt    time.Time
	lastAccessed time.Time
}

// Cache is a bounded in-memory cache. The aggregate size of live entries
// never exceeds the configured maximum; expired entries are dropped lazily
// on read and eagerly when room is needed for a write.
type Cache[T any] struct {
	mu      sync.Mutex
	maxSize int64
	used    int64
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	now     func() time.Time
}

// Option configures a Cache.
type Option[T any] func(*Cache[T])

// WithClock overrides the time source. Useful for tests.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Cache[T]) {
		c.now = now
	}
}

// New creates a cache holding at most maxSize bytes of entries.
func New[T any](maxSize int64, opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{
		maxSize: maxSize,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores value under key, evicting expired entries first and then the
// least-recently-used entries until the value fits. Returns false when the
// value alone exceeds the cache capacity.
func (c *Cache[T]) Set(key string, value T, size int64, ttl time.Duration) bool {
	if size > c.maxSize {
		return false
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if el, ok := c.entries[key]; ok {
		c.remove(el)
	}
	c.evictExpired(now)
	for c.used+size > c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.remove(oldest)
	}

	el := c.order.PushFront(&entry[T]{
		key:          key,
		value:        value,
		size:         size,
		expiresAt:    now.Add(ttl),
		lastAccessed: now,
	})
	c.entries[key] = el
	c.used += size
	return true
}

// Get returns the live value under key. Expired entries are removed on
// read and reported as absent.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	el, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[T])

	now := c.now()
	if !e.expiresAt.After(now) {
		c.remove(el)
		return zero, false
	}

	e.lastAccessed = now
	c.order.MoveToFront(el)
	return e.value, true
}

// Delete removes the entry under key, if present.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.remove(el)
	}
}

// Len returns the number of live entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Size returns the aggregate size of live entries.
func (c *Cache[T]) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

// remove must be called with c.mu held.
func (c *Cache[T]) remove(el *list.Element) {
	e := el.Value.(*entry[T])
	c.order.Remove(el)
	delete(c.entries, e.key)
	c.used -= e.size
}

// evictExpired must be called with c.mu held.
func (c *Cache[T]) evictExpired(now time.Time) {
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if e := el.Value.(*entry[T]); !e.expiresAt.After(now) {
			c.remove(el)
		}
		el = prev
	}
}
