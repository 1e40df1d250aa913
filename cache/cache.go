// Package cache memoizes fetch and research results by fingerprint
// with a time-to-live.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is a bounded TTL cache. Lookups after expiry behave as misses.
// Safe for concurrent use; concurrent writers for the same key resolve
// as last writer wins.
type Cache[V any] struct {
	lru *expirable.LRU[string, V]
}

// New creates a cache holding up to size entries for ttl each.
func New[V any](size int, ttl time.Duration) *Cache[V] {
	return &Cache[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

// Get returns the live entry for key, if any.
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

// Set stores value under key with the cache-wide TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

// Len reports the number of stored entries, expired ones included
// until eviction.
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.lru.Purge()
}

// Fingerprint derives a stable cache key from its parts.
func Fingerprint(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
