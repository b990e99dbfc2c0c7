// Package cache provides thread-safe generic caching for rendered output.
package cache

import "sync"

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// highlightKey is content hash plus chroma style; the same export text looks
// different under each style.
type highlightKey struct {
	contentHash string
	style       string
}

var highlightedExportCache = NewCache[highlightKey, string]()

func GetHighlightedExport(contentHash, style string) (string, bool) {
	return highlightedExportCache.Get(highlightKey{contentHash, style})
}

func SetHighlightedExport(contentHash, style, html string) {
	highlightedExportCache.Set(highlightKey{contentHash, style}, html)
}

func ClearHighlightedExportCache() {
	highlightedExportCache.Clear()
}
