// Package cache implements the TTL-bounded memoization the Value Resolver
// uses to avoid re-walking the reflection schema for the same
// className.propertyName pair across a large project tree.
package cache

import (
	"sync"
	"time"

	"github.com/jra3/instancesync/internal/rbxvalue"
)

type entry struct {
	value     rbxvalue.Type
	expiresAt time.Time
}

// PropertyTypeCache is a TTL cache from a className.propertyName key to its
// declared rbxvalue.Type, with an optional max-entries bound. When
// maxEntries is exceeded, the entry closest to expiry is evicted.
type PropertyTypeCache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	stopCh     chan struct{}
}

// New creates a property-type cache with the given TTL and max entries
// limit. If maxEntries is 0 or negative, the cache size is unlimited.
func New(ttl time.Duration, maxEntries int) *PropertyTypeCache {
	c := &PropertyTypeCache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		stopCh:     make(chan struct{}),
	}

	go c.cleanup()

	return c
}

func (c *PropertyTypeCache) Get(key string) (rbxvalue.Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}

	if time.Now().After(e.expiresAt) {
		return "", false
	}

	return e.value, true
}

func (c *PropertyTypeCache) Set(key string, value rbxvalue.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// If at capacity and this is a new key, evict the entry closest to expiry.
	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[key]; !exists {
			c.evictOldest()
		}
	}

	c.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// evictOldest removes the entry with the earliest expiry time.
// Must be called with lock held.
func (c *PropertyTypeCache) evictOldest() {
	var oldestKey string
	var oldestExpiry time.Time

	for key, e := range c.entries {
		if oldestKey == "" || e.expiresAt.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = e.expiresAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Stop terminates the background cleanup goroutine.
func (c *PropertyTypeCache) Stop() {
	close(c.stopCh)
}

func (c *PropertyTypeCache) cleanup() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stopCh:
			return
		}
	}
}
