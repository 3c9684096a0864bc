// Package cache provides an in-memory TTL cache with LRU eviction for query
// results. Keys are exact rendered query strings: distinct phrasings that
// resolve to the same query intentionally share a cache line, since it is
// the resolved query that determines fetch cost.
package cache

import (
	"container/list"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTTL bounds how long a fetched result is served without refetch.
	DefaultTTL = 60 * time.Second
	// DefaultCapacity is the entry count at which LRU eviction kicks in.
	DefaultCapacity = 128
)

// Stats reports cache effectiveness counters.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// flight is the shared result of one singleflight fetch. cached is false for
// every waiter coalesced onto a cold fetch, not just the caller whose
// closure ran, so audit counters see the fetch exactly as it happened.
type flight[V any] struct {
	value  V
	cached bool
}

// Cache is a TTL-bounded, capacity-bounded cache safe for concurrent use.
// Concurrent misses on the same key are collapsed into a single fetch.
type Cache[V any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	items    map[string]*list.Element
	order    *list.List // front is most recently used
	group    singleflight.Group
	now      func() time.Time
	hits     int64
	misses   int64
}

// New creates a Cache with the given TTL and capacity. Non-positive values
// fall back to the defaults.
func New[V any](ttl time.Duration, capacity int) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[V]{
		ttl:      ttl,
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// GetOrFetch returns the live cached value for key, or invokes fetch exactly
// once, stores the result with a fresh expiry, and returns it. The second
// return reports whether the value was served from the cache. Fetch errors
// are returned to all waiters and never populate the cache.
func (c *Cache[V]) GetOrFetch(key string, fetch func() (V, error)) (V, bool, error) {
	if v, ok := c.lookup(key); ok {
		return v, true, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent flight may have populated the entry while this
		// caller was waiting on the group.
		if v, ok := c.lookup(key); ok {
			return flight[V]{value: v, cached: true}, nil
		}
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		c.store(key, value)
		return flight[V]{value: value}, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	f := v.(flight[V])
	return f.value, f.cached, nil
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Entries: len(c.items), Hits: c.hits, Misses: c.misses}
}

func (c *Cache[V]) lookup(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	ent := elem.Value.(*entry[V])
	if !c.now().Before(ent.expiresAt) {
		c.order.Remove(elem)
		delete(c.items, key)
		c.misses++
		var zero V
		return zero, false
	}
	c.order.MoveToFront(elem)
	c.hits++
	return ent.value, true
}

func (c *Cache[V]) store(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry[V])
		ent.value = value
		ent.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(elem)
		return
	}

	if len(c.items) >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry[V]).key)
		}
	}
	elem := c.order.PushFront(&entry[V]{
		key:       key,
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	})
	c.items[key] = elem
}
