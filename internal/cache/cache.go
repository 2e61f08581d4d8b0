// Package cache provides a small TTL cache used for resolved resources such
// as image loads.
package cache

import (
	"sync"
	"time"
)

// Cache is a TTL cache safe for concurrent use. A zero TTL means entries
// never expire.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	items   map[K]item[V]
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Option configures a Cache.
type Option func(*settings)

type settings struct {
	maxSize int
	now     func() time.Time
}

// WithMaxSize bounds the number of entries. When full, the entry that
// expires soonest is evicted.
func WithMaxSize(size int) Option {
	return func(s *settings) {
		s.maxSize = size
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a cache.
func New[K comparable, V any](ttl time.Duration, opts ...Option) *Cache[K, V] {
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return &Cache[K, V]{
		items:   make(map[K]item[V]),
		ttl:     ttl,
		maxSize: s.maxSize,
		now:     s.now,
	}
}

func (c *Cache[K, V]) expired(it item[V]) bool {
	return !it.expiresAt.IsZero() && c.now().After(it.expiresAt)
}

// Get returns the value for key if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if c.expired(it) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return it.value, true
}

// Set stores a value with the cache's TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.maxSize > 0 && len(c.items) >= c.maxSize {
		c.evictSoonestLocked()
	}
	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}
	c.items[key] = item[V]{value: value, expiresAt: expires}
}

// Delete removes key.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	c.items = make(map[K]item[V])
	c.mu.Unlock()
}

// Len returns the number of entries, including expired ones not yet removed.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Cleanup removes expired entries and returns how many were removed.
func (c *Cache[K, V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, it := range c.items {
		if c.expired(it) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

// evictSoonestLocked removes the entry closest to expiry. Entries without
// an expiry are evicted first.
func (c *Cache[K, V]) evictSoonestLocked() {
	var victim K
	var soonest time.Time
	first := true
	for k, it := range c.items {
		if first || it.expiresAt.Before(soonest) {
			victim, soonest, first = k, it.expiresAt, false
		}
	}
	if !first {
		delete(c.items, victim)
	}
}
