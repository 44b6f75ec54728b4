// Package cache provides the two in-memory stores shared across in-flight
// requests: a bounded query cache and a single-use continuation store. They
// are separate types on purpose: a single map with key-prefix conventions
// risks collisions between a query that happens to start with the
// continuation prefix and a real continuation entry.
package cache

import "sync"

// DefaultCapacity is the bounded cache capacity when none is configured.
const DefaultCapacity = 1000

// Bounded is a concurrency-safe string cache with insertion-order eviction:
// once capacity is exceeded the oldest-inserted entry is dropped. This
// approximates LRU but ignores access recency.
type Bounded struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]string
	order    []string // insertion order, oldest first
}

// NewBounded creates a Bounded cache. A non-positive capacity falls back to
// DefaultCapacity.
func NewBounded(capacity int) *Bounded {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bounded{
		capacity: capacity,
		entries:  make(map[string]string),
	}
}

// Get returns the cached value for key.
func (c *Bounded) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put stores value under key. Overwriting an existing key keeps its original
// insertion slot. When the insert pushes the cache over capacity, the
// oldest-inserted entry is evicted.
func (c *Bounded) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = value

	for len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len returns the number of cached entries.
func (c *Bounded) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops all entries.
func (c *Bounded) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string)
	c.order = nil
}
