package cache

import "time"

// LayeredCache fronts the disk cache with the memory cache, so a response
// generated in an earlier run is read from disk once and served from
// memory for the rest of the process.
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates the memory+disk pair used when cache persistence
// is enabled.
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get checks memory first, then disk. A disk hit is promoted to memory
// under the memory default TTL.
func (c *LayeredCache) Get(key string) (string, bool) {
	if text, found := c.memory.Get(key); found {
		return text, true
	}

	if text, found := c.disk.Get(key); found {
		_ = c.memory.Set(key, text, 0)
		return text, true
	}

	return "", false
}

// Set writes to both layers.
func (c *LayeredCache) Set(key, text string, ttl time.Duration) error {
	if err := c.memory.Set(key, text, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, text, ttl)
}

// Delete evicts from both layers.
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	_ = c.disk.Delete(key)
	return nil
}

// Clear empties both layers.
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	_ = c.disk.Clear()
	return nil
}
