// Package cache provides a bounded, size-aware LRU cache.
package cache

import (
	"sync"
	"sync/atomic"
)

// DefaultMaxSize is the capacity used when a non-positive size is given.
const DefaultMaxSize = 1 << 20

// evictionSampleSize is the number of tail entries considered per eviction.
const evictionSampleSize = 5

// SizeFunc reports the weight of a value. Weights are in arbitrary units.
type SizeFunc[V any] func(V) int64

// LRU is a concurrency-safe least recently used cache. When the total weight
// exceeds the limit it evicts, among the few least recently used entries,
// the one with the fewest hits per unit of weight.
type LRU[K comparable, V any] struct {
	mu          sync.Mutex
	entries     map[K]*lruEntry[K, V]
	head        *lruEntry[K, V] // Most recently used.
	tail        *lruEntry[K, V] // Least recently used.
	sizeOf      SizeFunc[V]
	maxSize     int64
	currentSize int64

	hits   atomic.Int64
	misses atomic.Int64
}

type lruEntry[K comparable, V any] struct {
	key         K
	value       V
	size        int64
	accessCount int64
	prev        *lruEntry[K, V]
	next        *lruEntry[K, V]
}

// evictionCost is higher for entries worth keeping.
func (e *lruEntry[K, V]) evictionCost() float64 {
	if e.size <= 1 {
		return float64(e.accessCount)
	}

	return float64(e.accessCount) / float64(e.size)
}

// New creates a cache holding at most maxSize units as measured by sizeOf.
// A nil sizeOf weighs every value as one, bounding the entry count.
func New[K comparable, V any](maxSize int64, sizeOf SizeFunc[V]) *LRU[K, V] {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	if sizeOf == nil {
		sizeOf = func(V) int64 { return 1 }
	}

	return &LRU[K, V]{
		entries: make(map[K]*lruEntry[K, V]),
		sizeOf:  sizeOf,
		maxSize: maxSize,
	}
}

// Get returns the value stored under key.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		var zero V

		return zero, false
	}

	c.hits.Add(1)

	entry.accessCount++
	c.moveToFront(entry)

	return entry.value, true
}

// Put stores value under key, replacing any previous value. Values heavier
// than the whole cache are not stored.
func (c *LRU[K, V]) Put(key K, value V) {
	size := max(c.sizeOf(value), 0)
	if size > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.currentSize += size - entry.size
		entry.value = value
		entry.size = size
		entry.accessCount++
		c.moveToFront(entry)

		for c.currentSize > c.maxSize && c.tail != nil && c.tail != entry {
			c.evictLowestCost(entry)
		}

		return
	}

	for c.currentSize+size > c.maxSize && c.tail != nil {
		c.evictLowestCost(nil)
	}

	entry := &lruEntry[K, V]{
		key:         key,
		value:       value,
		size:        size,
		accessCount: 1,
	}

	c.entries[key] = entry
	c.currentSize += size
	c.addToFront(entry)
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Clear removes all entries. Hit and miss counters are kept.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.head = nil
	c.tail = nil
	c.currentSize = 0
}

// Stats returns cache statistics.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Entries:     len(c.entries),
		CurrentSize: c.currentSize,
		MaxSize:     c.maxSize,
	}
}

// Stats holds cache performance metrics.
type Stats struct {
	Hits        int64
	Misses      int64
	Entries     int
	CurrentSize int64
	MaxSize     int64
}

// HitRate returns the cache hit rate (0.0 to 1.0).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}

	return float64(s.Hits) / float64(total)
}

func (c *LRU[K, V]) moveToFront(entry *lruEntry[K, V]) {
	if entry == c.head {
		return
	}

	c.removeFromList(entry)
	c.addToFront(entry)
}

func (c *LRU[K, V]) addToFront(entry *lruEntry[K, V]) {
	entry.prev = nil
	entry.next = c.head

	if c.head != nil {
		c.head.prev = entry
	}

	c.head = entry

	if c.tail == nil {
		c.tail = entry
	}
}

func (c *LRU[K, V]) removeFromList(entry *lruEntry[K, V]) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		c.head = entry.next
	}

	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		c.tail = entry.prev
	}

	entry.prev = nil
	entry.next = nil
}

// evictLowestCost samples the tail and evicts the cheapest candidate other
// than keep.
func (c *LRU[K, V]) evictLowestCost(keep *lruEntry[K, V]) {
	var candidates [evictionSampleSize]*lruEntry[K, V]

	count := 0

	for entry := c.tail; entry != nil && count < evictionSampleSize; entry = entry.prev {
		if entry == keep {
			continue
		}

		candidates[count] = entry
		count++
	}

	if count == 0 {
		return
	}

	victim := candidates[0]
	lowestCost := victim.evictionCost()

	for i := 1; i < count; i++ {
		cost := candidates[i].evictionCost()
		if cost < lowestCost {
			lowestCost = cost
			victim = candidates[i]
		}
	}

	c.removeFromList(victim)
	delete(c.entries, victim.key)
	c.currentSize -= victim.size
}
