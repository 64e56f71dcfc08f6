package cache

import (
	"context"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/core/ports/caches"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

type lruEntry struct {
	data      []byte
	expiresAt time.Time
}

// LRUCache is an in-process ResponseCache. maxTTL bounds every entry; a
// shorter per-call ttl is honoured on read.
type LRUCache struct {
	lru *expirable.LRU[string, lruEntry]
	now func() time.Time
}

// NewLRUCache creates a cache holding at most size entries for at most maxTTL.
func NewLRUCache(size int, maxTTL time.Duration) *LRUCache {
	return &LRUCache{
		lru: expirable.NewLRU[string, lruEntry](size, nil, maxTTL),
		now: time.Now,
	}
}

var _ caches.ResponseCache = (*LRUCache)(nil)

func (c *LRUCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		c.lru.Remove(key)
		return nil, false, nil
	}
	return entry.data, true, nil
}

func (c *LRUCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := lruEntry{data: value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.lru.Add(key, entry)
	return nil
}
