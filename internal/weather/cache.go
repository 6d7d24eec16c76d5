// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package weather

import (
	"sync"
	"time"
)

// cacheEntry holds one reading with its freshness deadline. Expired
// entries are kept so the degraded tier can serve a stale reading; only
// Clear removes them.
type cacheEntry struct {
	reading  Context
	freshFor time.Time
	storedAt time.Time
}

// Cache is a thread-safe per-location reading cache. Get distinguishes
// fresh entries (within TTL) from stale ones so callers can report the
// correct degradation tier.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration

	hits   int64
	misses int64
}

// NewCache creates a reading cache with the given freshness TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Put stores the latest good reading for a location.
func (c *Cache) Put(location string, reading Context) {
	now := time.Now()
	c.mu.Lock()
	c.entries[location] = cacheEntry{
		reading:  reading,
		freshFor: now.Add(c.ttl),
		storedAt: now,
	}
	c.mu.Unlock()
}

// Get returns the cached reading for a location. fresh is true when the
// entry is within its TTL; ok is true whenever any reading exists, even
// a stale one.
func (c *Cache) Get(location string) (reading Context, fresh, ok bool) {
	c.mu.RLock()
	entry, exists := c.entries[location]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return Context{}, false, false
	}

	c.recordHit()
	return entry.reading, time.Now().Before(entry.freshFor), true
}

// Age returns how long ago the reading for a location was stored.
func (c *Cache) Age(location string) (time.Duration, bool) {
	c.mu.RLock()
	entry, exists := c.entries[location]
	c.mu.RUnlock()

	if !exists {
		return 0, false
	}
	return time.Since(entry.storedAt), true
}

// Clear drops all cached readings.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// HitRate returns the cache hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	if total == 0 {
		return 0.0
	}
	return float64(c.hits) / float64(total) * 100.0
}

func (c *Cache) recordHit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}
