package auth

import (
	"sync"
	"time"
)

// PermissionCache memoizes role lookups with a per-entry TTL.
type PermissionCache struct {
	cache *sync.Map
	ttl   time.Duration
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// NewPermissionCache creates a cache whose entries expire after ttl.
func NewPermissionCache(ttl time.Duration) *PermissionCache {
	return &PermissionCache{
		cache: &sync.Map{},
		ttl:   ttl,
	}
}

// GetRole returns the cached role for key, dropping expired entries.
func (c *PermissionCache) GetRole(key string) (string, bool) {
	val, found := c.cache.Load(key)
	if !found {
		return "", false
	}

	entry := val.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.cache.Delete(key)
		return "", false
	}

	return entry.value, true
}

// SetRole stores a role under key.
func (c *PermissionCache) SetRole(key, value string) {
	c.cache.Store(key, &cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Delete removes an entry; absent keys are a no-op.
func (c *PermissionCache) Delete(key string) {
	c.cache.Delete(key)
}

// Clear empties the cache.
func (c *PermissionCache) Clear() {
	c.cache.Range(func(key, value interface{}) bool {
		c.cache.Delete(key)
		return true
	})
}
