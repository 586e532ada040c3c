package cache

import (
	"sync"
	"time"
)

type item[V any] struct {
	value     V
	expiresAt int64 // UnixNano, 0 means no expiration
}

func (it item[V]) expired(now int64) bool {
	return it.expiresAt != 0 && now > it.expiresAt
}

// Cache is a small thread-safe generic cache with per-item TTL. Expired
// items are dropped lazily on access.
type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	store      map[K]item[V]
	defaultTTL time.Duration
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithDefaultTTL sets the TTL applied by Set.
func WithDefaultTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.defaultTTL = ttl
	}
}

// NewCache creates a Cache. Without WithDefaultTTL, entries never expire.
func NewCache[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{store: make(map[K]item[V])}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores value under key with the cache's default TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key, expiring after ttl. A non-positive ttl
// means no expiration.
func (c *Cache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	c.mu.Lock()
	c.store[key] = item[V]{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

// Get returns the value for key and whether a live entry was found.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.store[key]
	if !ok {
		var zero V
		return zero, false
	}
	if it.expired(time.Now().UnixNano()) {
		delete(c.store, key)
		var zero V
		return zero, false
	}
	return it.value, true
}

// Delete removes key from the cache.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
}

// Len returns the number of live entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	n := 0
	for key, it := range c.store {
		if it.expired(now) {
			delete(c.store, key)
			continue
		}
		n++
	}
	return n
}
