// ArtScape - Art Marketplace with CLIP-Based Artwork Recommendations
// Copyright 2026 hadeelfai
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hadeelfai/ArtScape

package embed

import (
	"context"
	"sync"
	"time"

	"github.com/hadeelfai/ArtScape/internal/metrics"
)

// lruEntry is a node in the cache's doubly-linked list.
type lruEntry struct {
	key       string
	vector    []float64
	prev      *lruEntry
	next      *lruEntry
	expiresAt time.Time
}

// vectorCache is a thread-safe LRU cache with TTL for content-to-vector
// lookups. O(1) Get, Add and eviction: a doubly-linked list keeps recency
// order and a map gives direct node access.
type vectorCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*lruEntry

	// head.next is most recently used, tail.prev least recently used.
	head *lruEntry
	tail *lruEntry
}

func newVectorCache(capacity int, ttl time.Duration) *vectorCache {
	if capacity <= 0 {
		capacity = 1000
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	c := &vectorCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*lruEntry, capacity),
		head:     &lruEntry{},
		tail:     &lruEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// get returns the cached vector, moving the entry to the front.
// Expired entries are removed lazily.
func (c *vectorCache) get(key string) ([]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.remove(entry)
		return nil, false
	}

	c.moveToFront(entry)
	return entry.vector, true
}

// add stores a vector, evicting the least recently used entry at capacity.
func (c *vectorCache) add(key string, vector []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[key]; ok {
		entry.vector = vector
		entry.expiresAt = time.Now().Add(c.ttl)
		c.moveToFront(entry)
		return
	}

	if len(c.items) >= c.capacity {
		c.remove(c.tail.prev)
	}

	entry := &lruEntry{
		key:       key,
		vector:    vector,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.items[key] = entry
	c.pushFront(entry)
}

// len returns the current entry count.
func (c *vectorCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *vectorCache) pushFront(entry *lruEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *vectorCache) moveToFront(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.pushFront(entry)
}

func (c *vectorCache) remove(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}

// Cache key prefixes keep image URLs and text queries from colliding.
const (
	imageKeyPrefix = "image:"
	textKeyPrefix  = "text:"
)

// CachingGenerator wraps a Generator with an LRU cache keyed by content,
// making repeated embeds of the same input idempotent without a round trip.
// Safe for concurrent use under concurrent requests.
type CachingGenerator struct {
	inner Generator
	cache *vectorCache
}

// Ensure CachingGenerator implements Generator.
var _ Generator = (*CachingGenerator)(nil)

// NewCachingGenerator wraps the given generator with an LRU TTL cache.
func NewCachingGenerator(inner Generator, capacity int, ttl time.Duration) *CachingGenerator {
	return &CachingGenerator{
		inner: inner,
		cache: newVectorCache(capacity, ttl),
	}
}

// EmbedImage returns the cached vector for the URL, embedding on miss.
func (g *CachingGenerator) EmbedImage(ctx context.Context, imageURL string) ([]float64, error) {
	return g.lookup(ctx, imageKeyPrefix+imageURL, func() ([]float64, error) {
		return g.inner.EmbedImage(ctx, imageURL)
	})
}

// EmbedText returns the cached vector for the text, embedding on miss.
func (g *CachingGenerator) EmbedText(ctx context.Context, text string) ([]float64, error) {
	return g.lookup(ctx, textKeyPrefix+text, func() ([]float64, error) {
		return g.inner.EmbedText(ctx, text)
	})
}

func (g *CachingGenerator) lookup(ctx context.Context, key string, fn func() ([]float64, error)) ([]float64, error) {
	if vector, ok := g.cache.get(key); ok {
		metrics.EmbedCacheHits.Inc()
		return vector, nil
	}
	metrics.EmbedCacheMisses.Inc()

	vector, err := fn()
	if err != nil {
		return nil, err
	}

	g.cache.add(key, vector)
	return vector, nil
}
