package cache

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestCacheKey_NamespacedAndStable(t *testing.T) {
	a := CacheKey("prompt|definition|gpt-4o-mini|1200")
	b := CacheKey("prompt|definition|gpt-4o-mini|1200")
	c := CacheKey("prompt|comparative|gpt-4o-mini|1200")

	if !strings.HasPrefix(a, "noema:v1:") {
		t.Errorf("Expected namespaced key, got %q", a)
	}
	if a != b {
		t.Error("Expected identical payloads to share a key")
	}
	if a == c {
		t.Error("Expected different payloads to get different keys")
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss on empty cache")
	}

	if err := c.Set("k", "generated text", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	text, found := c.Get("k")
	if !found || text != "generated text" {
		t.Errorf("Expected cached text back, got %q found=%v", text, found)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected miss after Clear")
	}
}

func TestDiskCache_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	key := CacheKey("persisted request")

	if err := NewDiskCache(dir, time.Hour).Set(key, "from an earlier run", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	text, found := NewDiskCache(dir, time.Hour).Get(key)
	if !found || text != "from an earlier run" {
		t.Errorf("Expected persisted response, got %q found=%v", text, found)
	}
}

func TestDiskCache_ExpiredEntryIsAMissAndRemoved(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := CacheKey("short-lived")

	if err := c.Set(key, "stale", -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("Expected expired entry to miss")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected expired file removed, found %d entries", len(entries))
	}
}

func TestDiskCache_CorruptFileIsAMiss(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := CacheKey("corrupt")

	if err := c.Set(key, "fine", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := os.WriteFile(c.path(key), []byte("not json"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("Expected corrupt entry to miss")
	}
}

func TestLayeredCache_DiskHitPromotedToMemory(t *testing.T) {
	dir := t.TempDir()
	key := CacheKey("layered")

	if err := NewDiskCache(dir, time.Hour).Set(key, "warm", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	layered := NewLayeredCache(time.Minute, dir, time.Hour)
	text, found := layered.Get(key)
	if !found || text != "warm" {
		t.Fatalf("Expected disk hit through the layered cache, got %q found=%v", text, found)
	}

	// The promoted copy must survive the disk layer going away.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	text, found = layered.Get(key)
	if !found || text != "warm" {
		t.Errorf("Expected promoted memory copy, got %q found=%v", text, found)
	}
}
