// Package cache provides ports.CacheStore implementations for the results cache.
package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ahrav/go-evalstats/internal/ports"
)

var _ ports.CacheStore = (*MemoryCache)(nil)

type memoryEntry struct {
	value []byte
	// expires is zero for entries without expiration.
	expires time.Time
}

// MemoryCache is an in-process ports.CacheStore. Expired entries are
// dropped lazily on access. Values are copied on the way in and out, so
// callers may reuse their buffers.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements ports.CacheStore.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if !entry.expires.IsZero() && !c.now().Before(entry.expires) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have replaced it.
		if current, ok := c.entries[key]; ok && current.expires.Equal(entry.expires) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return slices.Clone(entry.value), true, nil
}

// Set implements ports.CacheStore.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := memoryEntry{value: slices.Clone(value)}
	if expiration > 0 {
		entry.expires = c.now().Add(expiration)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Delete implements ports.CacheStore.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Clear implements ports.CacheStore.
func (c *MemoryCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
