package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrCacheMiss indicates the key was not found in cache
var ErrCacheMiss = errors.New("cache miss")

// Cache stores JSON-serializable values with a TTL
type Cache interface {
	// Get decodes the cached value for key into dest, or returns ErrCacheMiss
	Get(ctx context.Context, key string, dest interface{}) error

	// Set stores a value with the default TTL
	Set(ctx context.Context, key string, value interface{}) error

	// SetWithTTL stores a value with a custom TTL; a non-positive ttl stores nothing
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes a value
	Delete(ctx context.Context, key string) error

	// HealthCheck checks that the backend is usable
	HealthCheck(ctx context.Context) error
}

// RequestKey derives a cache key from an upstream request URL and optional body
func RequestKey(prefix, url string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(url))
	if len(body) > 0 {
		h.Write([]byte{'\n'})
		h.Write(body)
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}
