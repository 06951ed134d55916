package utils

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// CacheItem is a cached value. Entries stored against a file remember its
// size and mtime.
type CacheItem[T any] struct {
	Value   T
	ModTime time.Time
	Size    int64
}

// matches reports whether info still describes the file the item was stored
// against
func (i CacheItem[T]) matches(info os.FileInfo) bool {
	return info.ModTime().Equal(i.ModTime) && info.Size() == i.Size
}

// Cache is a concurrency-safe memo used by the classifier and the file
// reader. Entries may be tied to a file so they are dropped once it changes.
type Cache[K comparable, V any] struct {
	items  *xsync.Map[K, CacheItem[V]]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates an empty cache
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{items: xsync.NewMap[K, CacheItem[V]]()}
}

func (c *Cache[K, V]) lookup(key K) (CacheItem[V], bool) {
	item, ok := c.items.Load(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return item, ok
}

// Get returns the value stored for key
func (c *Cache[K, V]) Get(key K) (V, bool) {
	item, ok := c.lookup(key)
	return item.Value, ok
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. Errors are not cached. Concurrent misses may compute twice; the
// value stored last wins, so compute must be deterministic.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}
	value, err := compute()
	if err != nil {
		return value, err
	}
	c.Set(key, value)
	return value, nil
}

// GetWithFileValidation returns the value stored for key unless filePath
// changed since it was stored, in which case the entry is dropped
func (c *Cache[K, V]) GetWithFileValidation(key K, filePath string) (V, bool) {
	var zero V
	item, ok := c.items.Load(key)
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	if info, err := os.Stat(filePath); err == nil && item.matches(info) {
		c.hits.Add(1)
		return item.Value, true
	}
	c.items.Delete(key)
	c.misses.Add(1)
	return zero, false
}

// Set stores value under key
func (c *Cache[K, V]) Set(key K, value V) {
	c.items.Store(key, CacheItem[V]{Value: value})
}

// SetWithFileInfo stores value under key, tied to the current state of filePath
func (c *Cache[K, V]) SetWithFileInfo(key K, value V, filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return err
	}
	c.items.Store(key, CacheItem[V]{Value: value, ModTime: info.ModTime(), Size: info.Size()})
	return nil
}

func (c *Cache[K, V]) Delete(key K) {
	c.items.Delete(key)
}

// Clear removes every entry and resets the counters
func (c *Cache[K, V]) Clear() {
	c.items.Clear()
	c.hits.Store(0)
	c.misses.Store(0)
}

func (c *Cache[K, V]) Size() int {
	return c.items.Size()
}

// Keys returns the cached keys in no particular order
func (c *Cache[K, V]) Keys() []K {
	keys := make([]K, 0, c.items.Size())
	c.items.Range(func(key K, _ CacheItem[V]) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// CacheStats reports cache usage
type CacheStats struct {
	Size   int
	Hits   int64
	Misses int64
}

func (c *Cache[K, V]) Stats() CacheStats {
	return CacheStats{
		Size:   c.Size(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}
