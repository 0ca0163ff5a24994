package mcstatus

import (
	"context"
	"sync"
	"time"
)

// CacheEntry is a resolved status and the time it was resolved at.
type CacheEntry struct {
	Data      ServerStatus `json:"data"`
	Timestamp time.Time    `json:"timestamp"`
}

// Cache stores the last resolved status per address. Entries are never
// evicted since stale entries serve as fallback data.
// Implementations must be safe for concurrent use and must not share
// memory with the entries they return.
type Cache interface {
	Get(ctx context.Context, addr string) (CacheEntry, bool, error)
	Put(ctx context.Context, addr string, entry CacheEntry) error
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
}

// NewMemoryCache returns a Cache that lives in process memory.
func NewMemoryCache() Cache {
	return &memoryCache{
		entries: map[string]CacheEntry{},
	}
}

func (c *memoryCache) Get(_ context.Context, addr string) (CacheEntry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[addr]
	if !ok {
		return CacheEntry{}, false, nil
	}

	e.Data = e.Data.Clone()
	return e, true, nil
}

func (c *memoryCache) Put(_ context.Context, addr string, entry CacheEntry) error {
	entry.Data = entry.Data.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[addr] = entry
	return nil
}
