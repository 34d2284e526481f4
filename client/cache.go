package client

import (
	"context"
	"fmt"
	"sync"
)

// Query cache keys shared by the flows.
const (
	KeyAuthMe              = "auth.me"
	KeyStripeConnectStatus = "stripe.connect.status"
)

// KeyEmailDomain is the cache key of a project's email domain status.
func KeyEmailDomain(projectID string) string {
	return "email.domain." + projectID
}

// Cache holds query results until they are invalidated.
type Cache struct {
	mu      sync.Mutex
	entries map[string]any
	// generation counts invalidations per key so a fetch that raced an
	// invalidation does not store a stale value.
	generation map[string]uint64
	// epoch is bumped by Reset for the same reason.
	epoch uint64
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{
		entries:    make(map[string]any),
		generation: make(map[string]uint64),
	}
}

// Get returns the cached value for key.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Set stores v under key.
func (c *Cache) Set(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

// Invalidate drops key so the next Fetch reloads it.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.generation[key]++
}

// Reset drops every entry. Used on logout.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.epoch++
}

// Fetch returns the cached T under key, calling load on a miss. Errors are
// not cached.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	if v, ok := c.entries[key]; ok {
		c.mu.Unlock()
		t, ok := v.(T)
		if !ok {
			var zero T
			return zero, fmt.Errorf("cache entry %q holds %T", key, v)
		}
		return t, nil
	}
	gen, epoch := c.generation[key], c.epoch
	c.mu.Unlock()

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	c.mu.Lock()
	if c.generation[key] == gen && c.epoch == epoch {
		c.entries[key] = v
	}
	c.mu.Unlock()
	return v, nil
}
