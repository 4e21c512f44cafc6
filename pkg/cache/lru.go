package cache

import (
	"container/list"
	"sync"
	"time"
)

type lruEntry[K comparable, V any] struct {
	key        K
	value      V
	lastAccess time.Time
}

// Stats is a point-in-time snapshot of cache occupancy.
type Stats struct {
	Size               int       `json:"size"`
	MaxSize            int       `json:"max_size"`
	UtilizationPercent float64   `json:"utilization_percent"`
	OldestAccess       time.Time `json:"oldest_access"` // zero when the cache is empty
}

// Option configures an LRU.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for last-access bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// LRU is a thread-safe least-recently-used cache that tracks when each entry
// was last touched. The front of the recency list is the least recently used
// entry; every touch moves an entry to the back.
//
// Eviction never releases the evicted value. Callers that store resources
// get the evicted pair back from Insert and decide how to tear it down.
type LRU[K comparable, V any] struct {
	capacity int
	items    map[K]*list.Element
	recency  *list.List
	now      func() time.Time
	mu       sync.Mutex
}

// New creates a new LRU with the specified capacity.
// The capacity must be positive, otherwise it panics.
func New[K comparable, V any](capacity int, opts ...Option) *LRU[K, V] {
	if capacity <= 0 {
		panic("LRU cache capacity must be positive")
	}

	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	return &LRU[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		recency:  list.New(),
		now:      o.now,
	}
}

// Get retrieves a value and marks it as most recently used.
// A miss has no side effects.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}

	entry := elem.Value.(*lruEntry[K, V])
	entry.lastAccess = c.now()
	c.recency.MoveToBack(elem)
	return entry.value, true
}

// Peek retrieves a value without touching its recency or last access time.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		return elem.Value.(*lruEntry[K, V]).value, true
	}

	var zero V
	return zero, false
}

// Contains reports whether key is cached. It has no side effects.
func (c *LRU[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// LastAccess returns the time key was last inserted or read with Get.
func (c *LRU[K, V]) LastAccess(key K) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		return elem.Value.(*lruEntry[K, V]).lastAccess, true
	}
	return time.Time{}, false
}

// Insert stores value under key as the most recently used entry.
//
// An existing entry for key is dropped first, so re-inserting resets its
// position instead of duplicating it. If the cache is then full, exactly one
// least recently used entry is evicted and returned to the caller.
func (c *LRU[K, V]) Insert(key K, value V) (evictedKey K, evictedValue V, evicted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}

	if c.recency.Len() >= c.capacity {
		if front := c.recency.Front(); front != nil {
			entry := c.removeElement(front)
			evictedKey, evictedValue, evicted = entry.key, entry.value, true
		}
	}

	entry := &lruEntry[K, V]{key: key, value: value, lastAccess: c.now()}
	c.items[key] = c.recency.PushBack(entry)

	return evictedKey, evictedValue, evicted
}

// Delete removes key from the cache and reports whether it was present.
func (c *LRU[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeElement(elem)
	return true
}

// LeastRecentlyUsed returns the key that would be evicted next.
func (c *LRU[K, V]) LeastRecentlyUsed() (K, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if front := c.recency.Front(); front != nil {
		return front.Value.(*lruEntry[K, V]).key, true
	}

	var zero K
	return zero, false
}

// StaleEntries returns the keys idle for strictly longer than timeout,
// least recently used first.
func (c *LRU[K, V]) StaleEntries(timeout time.Duration) []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	stale := make([]K, 0)
	for elem := c.recency.Front(); elem != nil; elem = elem.Next() {
		entry := elem.Value.(*lruEntry[K, V])
		// Recency order is also last-access order, so the scan can stop at
		// the first fresh entry.
		if now.Sub(entry.lastAccess) <= timeout {
			break
		}
		stale = append(stale, entry.key)
	}
	return stale
}

// Keys returns all keys, least recently used first.
func (c *LRU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, c.recency.Len())
	for elem := c.recency.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*lruEntry[K, V]).key)
	}
	return keys
}

func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recency.Len()
}

func (c *LRU[K, V]) Cap() int {
	return c.capacity
}

// Stats returns occupancy figures for the cache.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Size:               c.recency.Len(),
		MaxSize:            c.capacity,
		UtilizationPercent: 100 * float64(c.recency.Len()) / float64(c.capacity),
	}
	if front := c.recency.Front(); front != nil {
		s.OldestAccess = front.Value.(*lruEntry[K, V]).lastAccess
	}
	return s
}

// Must be called with lock held.
func (c *LRU[K, V]) removeElement(elem *list.Element) *lruEntry[K, V] {
	c.recency.Remove(elem)
	entry := elem.Value.(*lruEntry[K, V])
	delete(c.items, entry.key)
	return entry
}
