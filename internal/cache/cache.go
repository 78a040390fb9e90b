// Package cache memoizes derived portfolio views between writes.
package cache

import (
	"strings"
	"sync"
	"time"
)

// entry wraps a cached view with expiry and insertion order tracking.
type entry struct {
	value     any
	expiry    time.Time
	insertIdx int64
}

// ViewCache caches views computed from persisted state (holdings, projection,
// period reports). Keys are "view:arg". Any write to the portfolio must call
// Clear before readers see the new state.
// Thread-safe with sync.RWMutex.
type ViewCache struct {
	mu         sync.RWMutex
	items      map[string]entry
	ttl        time.Duration
	maxEntries int
	nextIdx    int64
	generation uint64
	now        func() time.Time
}

// New creates a ViewCache with the given TTL and max entry count.
// A maxEntries of zero or less disables caching.
func New(ttl time.Duration, maxEntries int) *ViewCache {
	return &ViewCache{
		items:      make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// MakeKey builds a cache key from a view name and its arguments.
func MakeKey(view string, args ...string) string {
	if len(args) == 0 {
		return view
	}
	return view + ":" + strings.Join(args, ",")
}

// Get returns a cached view if found and not expired.
func (c *ViewCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if c.now().After(e.expiry) {
		c.mu.Lock()
		if e2, ok2 := c.items[key]; ok2 && c.now().After(e2.expiry) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// Set stores a view. Evicts the oldest entry if at capacity.
func (c *ViewCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value)
}

func (c *ViewCache) setLocked(key string, value any) {
	if c.maxEntries <= 0 {
		return
	}

	e := entry{
		value:     value,
		expiry:    c.now().Add(c.ttl),
		insertIdx: c.nextIdx,
	}
	c.nextIdx++

	if _, exists := c.items[key]; exists {
		c.items[key] = e
		return
	}

	if len(c.items) >= c.maxEntries {
		c.evictOldest()
	}

	c.items[key] = e
}

// Clear drops every entry.
func (c *ViewCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.items = make(map[string]entry)
}

// Len returns the number of entries, expired ones included.
func (c *ViewCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evictOldest removes the entry with the lowest insertIdx. Must be called with mu held.
func (c *ViewCache) evictOldest() {
	var oldestKey string
	var oldestIdx int64 = -1

	for key, e := range c.items {
		if oldestIdx == -1 || e.insertIdx < oldestIdx {
			oldestIdx = e.insertIdx
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

// GetOrCompute returns the cached view for key, computing and storing it on a
// miss. A value computed while an invalidation ran is returned but not stored.
func GetOrCompute[T any](c *ViewCache, key string, compute func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	c.mu.RLock()
	gen := c.generation
	c.mu.RUnlock()

	value, err := compute()
	if err != nil {
		return value, err
	}

	c.mu.Lock()
	if c.generation == gen {
		c.setLocked(key, value)
	}
	c.mu.Unlock()
	return value, nil
}
