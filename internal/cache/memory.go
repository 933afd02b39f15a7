package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps responses for the life of the process. It is the
// whole cache when persistence is off, and the fast layer otherwise.
type MemoryCache struct {
	responses *gocache.Cache
}

// NewMemoryCache creates a memory cache whose expired entries are swept
// every cleanupInterval.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		responses: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get returns the cached response text for key, if it is still live.
func (c *MemoryCache) Get(key string) (string, bool) {
	if val, found := c.responses.Get(key); found {
		return val.(string), true
	}
	return "", false
}

// Set caches text under key. A zero ttl uses the cache default.
func (c *MemoryCache) Set(key, text string, ttl time.Duration) error {
	c.responses.Set(key, text, ttl)
	return nil
}

// Delete evicts one response.
func (c *MemoryCache) Delete(key string) error {
	c.responses.Delete(key)
	return nil
}

// Clear evicts every response.
func (c *MemoryCache) Clear() error {
	c.responses.Flush()
	return nil
}
