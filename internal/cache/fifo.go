// Package cache provides a small fixed-capacity cache with
// insertion-order eviction.
package cache

import "sync"

// FIFO is a bounded key/value cache. When full, adding a new key evicts
// the oldest inserted entry. Re-adding an existing key updates its value
// in place without refreshing its age; there is no recency tracking.
//
// Safe for concurrent use.
type FIFO[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[K]V
	order    []K
}

// NewFIFO creates a cache holding at most capacity entries. A capacity of
// zero or less disables caching; Put becomes a no-op.
func NewFIFO[K comparable, V any](capacity int) *FIFO[K, V] {
	return &FIFO[K, V]{
		capacity: capacity,
		entries:  make(map[K]V),
	}
}

// Get returns the cached value for key.
func (c *FIFO[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries[key]

	return v, ok
}

// Put stores value under key, evicting the oldest entry when at capacity.
func (c *FIFO[K, V]) Put(key K, value V) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = value

		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = value
	c.order = append(c.order, key)
}

// Len returns the number of cached entries.
func (c *FIFO[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
