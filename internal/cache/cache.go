// Package cache stores generator responses so repeated synthesis of the
// same term with the same evidence and settings never pays for a second
// generation. Keys are sha256 digests of the full request, so every layer
// can treat them as opaque filename-safe strings.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache holds generated synthesis text keyed by the hashed request that
// produced it. A miss is never an error; implementations expire entries on
// their own schedule.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, text string, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives the namespaced key for a generator request payload
// (prompt, mode, model, token cap joined by the caller).
func CacheKey(payload string) string {
	hash := sha256.Sum256([]byte(payload))
	return "noema:v1:" + hex.EncodeToString(hash[:])
}
