// Package geocache holds the process-wide memory layer of the geocode cache.
package geocache

import (
	"sync"

	"dispatch/internal/core/domain/model/address"
	"dispatch/internal/core/domain/model/kernel"
)

// MemoryCache maps normalized address keys to coordinates. Entries are never
// evicted; the cache lives as long as the process.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[address.Key]kernel.Coordinates
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[address.Key]kernel.Coordinates)}
}

func (c *MemoryCache) Get(key address.Key) (kernel.Coordinates, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	coordinates, ok := c.entries[key]
	return coordinates, ok
}

// Put stores valid coordinates; anything else is ignored.
func (c *MemoryCache) Put(key address.Key, coordinates kernel.Coordinates) {
	if coordinates.Validate() != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = coordinates
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
