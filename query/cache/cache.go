// Package cache is a small LRU cache for compiled SQL, keyed by query
// source and dialect. The REPL uses it so re-running a query is free;
// anything that compiles the same text repeatedly can share one.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Key derives the cache key for a query source and dialect pair.
func Key(source, dialect string) string {
	sum := sha256.Sum256([]byte(dialect + "\x00" + source))
	return hex.EncodeToString(sum[:])
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits      int64
	Misses    int64
	Size      int
	MaxSize   int
	Evictions int64
}

type entry struct {
	key       string
	sql       string
	expiresAt time.Time
}

// Cache is a fixed-size LRU with optional TTL. Safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	maxSize    int
	defaultTTL time.Duration
	order      *list.List
	items      map[string]*list.Element
	hits       int64
	misses     int64
	evictions  int64
}

// New creates a cache holding at most maxSize entries. A zero ttl means
// entries never expire.
func New(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = 128
	}
	return &Cache{
		maxSize:    maxSize,
		defaultTTL: ttl,
		order:      list.New(),
		items:      make(map[string]*list.Element),
	}
}

// Get returns the cached SQL for the key.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return "", false
	}
	ent := el.Value.(*entry)
	if !ent.expiresAt.IsZero() && time.Now().After(ent.expiresAt) {
		c.order.Remove(el)
		delete(c.items, key)
		c.misses++
		return "", false
	}
	c.order.MoveToFront(el)
	c.hits++
	return ent.sql, true
}

// Set stores compiled SQL, evicting the least recently used entry when
// the cache is full.
func (c *Cache) Set(key, sql string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.defaultTTL > 0 {
		expires = time.Now().Add(c.defaultTTL)
	}

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry)
		ent.sql = sql
		ent.expiresAt = expires
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
			c.evictions++
		}
	}
	c.items[key] = c.order.PushFront(&entry{key: key, sql: sql, expiresAt: expires})
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
}

// GetStats returns a snapshot of the counters.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Size:      c.order.Len(),
		MaxSize:   c.maxSize,
		Evictions: c.evictions,
	}
}
