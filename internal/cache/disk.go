package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskCache persists responses across runs, one JSON file per request key
// under the configured cache directory (~/.noema/cache by default).
// Expiry is checked lazily on read.
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a disk cache rooted at dir.
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{
		dir: dir,
		ttl: ttl,
	}
}

// responseEntry is the on-disk form of one cached generation.
type responseEntry struct {
	Text      string    `json:"text"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get returns the persisted response for key. Expired entries are removed
// on the way out; unreadable or corrupt files count as misses.
func (c *DiskCache) Get(key string) (string, bool) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	var entry responseEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}

	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return "", false
	}

	return entry.Text, true
}

// Set persists text under key. A zero ttl uses the cache default.
func (c *DiskCache) Set(key, text string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	entry := responseEntry{
		Text:      text,
		ExpiresAt: time.Now().Add(ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal response entry: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	path := c.path(key)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write response file: %w", err)
	}

	return nil
}

// Delete removes one persisted response.
func (c *DiskCache) Delete(key string) error {
	return os.Remove(c.path(key))
}

// Clear removes the whole cache directory.
func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

// path maps a request key to its file. Keys are sha256 hex with a fixed
// prefix, so they need no escaping.
func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}
