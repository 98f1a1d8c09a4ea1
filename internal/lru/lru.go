// Package lru is a size and age bounded cache. Expired entries are dropped lazily
// on access, so the cache owns no goroutine.
package lru

import (
	"container/list"
	"sync"
	"time"
)

// EvictCallback is used to get a callback when a cache entry is evicted
type EvictCallback[K comparable, V any] func(key K, value V)

// LRU implements a thread-safe LRU with expirable entries.
type LRU[K comparable, V any] struct {
	mu        sync.Mutex
	size      int
	ttl       time.Duration
	evictList *list.List
	items     map[K]*list.Element
	onEvict   EvictCallback[K, V]
	now       func() time.Time
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// NewLRU returns a new thread-safe cache with expirable entries.
//
// Size 0 makes the cache unbounded, ttl 0 turns expiring off.
func NewLRU[K comparable, V any](size int, onEvict EvictCallback[K, V], ttl time.Duration) *LRU[K, V] {
	if size < 0 {
		size = 0
	}
	if ttl < 0 {
		ttl = 0
	}
	return &LRU[K, V]{
		size:      size,
		ttl:       ttl,
		evictList: list.New(),
		items:     make(map[K]*list.Element),
		onEvict:   onEvict,
		now:       time.Now,
	}
}

// Add adds a value to the cache. Returns true if an eviction occurred.
func (c *LRU[K, V]) Add(key K, value V) (evicted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry[K, V])
		ent.value = value
		ent.expiresAt = c.expiry()
		c.evictList.MoveToFront(elem)
		return false
	}

	c.items[key] = c.evictList.PushFront(&entry[K, V]{key: key, value: value, expiresAt: c.expiry()})
	if c.size > 0 && c.evictList.Len() > c.size {
		c.removeElement(c.evictList.Back())
		return true
	}
	return false
}

// Get looks up a key's value from the cache and marks it as recently used.
func (c *LRU[K, V]) Get(key K) (value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.live(key)
	if !ok {
		return value, false
	}
	c.evictList.MoveToFront(elem)
	return elem.Value.(*entry[K, V]).value, true
}

// Peek returns the key value without updating its recentness.
func (c *LRU[K, V]) Peek(key K) (value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.live(key)
	if !ok {
		return value, false
	}
	return elem.Value.(*entry[K, V]).value, true
}

// Contains checks if a key is in the cache without updating its recentness.
func (c *LRU[K, V]) Contains(key K) bool {
	_, ok := c.Peek(key)
	return ok
}

// Remove removes the provided key from the cache, returning if the key was contained.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
		return true
	}
	return false
}

// Purge clears the cache completely, onEvict is called for each evicted key.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.evictList.Len() > 0 {
		c.removeElement(c.evictList.Back())
	}
}

// Keys returns the live keys, from oldest to newest.
func (c *LRU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.items))
	now := c.now()
	for elem := c.evictList.Back(); elem != nil; elem = elem.Prev() {
		if ent := elem.Value.(*entry[K, V]); !c.expired(ent, now) {
			keys = append(keys, ent.key)
		}
	}
	return keys
}

// Len returns the number of items in the cache, expired ones included until they are touched.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

func (c *LRU[K, V]) live(key K) (*list.Element, bool) {
	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.expired(elem.Value.(*entry[K, V]), c.now()) {
		c.removeElement(elem)
		return nil, false
	}
	return elem, true
}

func (c *LRU[K, V]) expiry() time.Time {
	if c.ttl == 0 {
		return time.Time{}
	}
	return c.now().Add(c.ttl)
}

func (c *LRU[K, V]) expired(ent *entry[K, V], now time.Time) bool {
	return !ent.expiresAt.IsZero() && now.After(ent.expiresAt)
}

func (c *LRU[K, V]) removeElement(elem *list.Element) {
	ent := c.evictList.Remove(elem).(*entry[K, V])
	delete(c.items, ent.key)
	if c.onEvict != nil {
		c.onEvict(ent.key, ent.value)
	}
}
