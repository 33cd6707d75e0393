package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

var _ Cache = (*MemoryCache)(nil)

// MemoryCache is an in-process cache used when Redis is unavailable.
// Values are stored JSON-encoded so that readers never share memory with writers.
type MemoryCache struct {
	store *gocache.Cache
	ttl   time.Duration
}

// NewMemoryCache creates an in-process cache with the given default TTL
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	cleanup := 2 * ttl
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &MemoryCache{
		store: gocache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// Get retrieves a value from cache
func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	val, ok := c.store.Get(key)
	if !ok {
		return ErrCacheMiss
	}

	data, ok := val.([]byte)
	if !ok {
		c.store.Delete(key)
		return ErrCacheMiss
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	return nil
}

// Set stores a value in cache
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores a value in cache with custom TTL
func (c *MemoryCache) SetWithTTL(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	c.store.Set(key, data, ttl)
	return nil
}

// Delete removes a value from cache
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

// HealthCheck always succeeds for the in-process cache
func (c *MemoryCache) HealthCheck(_ context.Context) error {
	return nil
}
