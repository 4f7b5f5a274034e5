package cache

import (
	"container/list"
	"sync"
	"time"
)

// ReadCache is the cache-aside layer for the read verticals. Entries carry a
// strict TTL: hits never refresh the clock, stale entries are evicted lazily
// on read, and inserts beyond capacity evict the least recently used entry.
type ReadCache[T any] struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	ttl        time.Duration
	maxEntries int

	hits   int64
	misses int64
}

type readEntry[T any] struct {
	key       string
	value     T
	expiresAt time.Time
}

// NewReadCache creates a read cache with the given TTL and capacity
func NewReadCache[T any](ttl time.Duration, maxEntries int) *ReadCache[T] {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &ReadCache[T]{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Get returns the cached value for key when present and fresh at now.
// An expired entry is removed and reported as a miss.
func (c *ReadCache[T]) Get(key string, now time.Time) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}

	entry := elem.Value.(*readEntry[T])
	if !entry.expiresAt.After(now) {
		c.order.Remove(elem)
		delete(c.entries, key)
		c.misses++
		return zero, false
	}

	c.order.MoveToFront(elem)
	c.hits++
	return entry.value, true
}

// Put stores value under key with a fresh TTL window starting at now
func (c *ReadCache[T]) Put(key string, value T, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*readEntry[T])
		entry.value = value
		entry.expiresAt = now.Add(c.ttl)
		c.order.MoveToFront(elem)
		return
	}

	if len(c.entries) >= c.maxEntries {
		c.evictLRULocked()
	}

	elem := c.order.PushFront(&readEntry[T]{
		key:       key,
		value:     value,
		expiresAt: now.Add(c.ttl),
	})
	c.entries[key] = elem
}

// Invalidate removes key from the cache
func (c *ReadCache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.Remove(elem)
		delete(c.entries, key)
	}
}

// evictLRULocked removes the least recently used entry.
// Caller must hold the lock.
func (c *ReadCache[T]) evictLRULocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	entry := back.Value.(*readEntry[T])
	c.order.Remove(back)
	delete(c.entries, entry.key)
}

// Len returns the number of cached entries (for testing/monitoring)
func (c *ReadCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit and miss counters (for testing/monitoring)
func (c *ReadCache[T]) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
