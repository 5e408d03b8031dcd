// Package cache provides the keyed, time-expiring cache used for derived
// counters and query results, with explicit invalidation hooks fired by
// the stores on write.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is a keyed TTL cache. Eviction of an absent key is a no-op, so
// invalidation hooks can fire without checking presence first.
type Store interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Flush()
}

// MemoryStore implements Store over an in-process go-cache instance.
// Safe for concurrent use.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a store with the given default TTL. Expired
// entries are swept at twice the TTL.
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(defaultTTL, 2*defaultTTL),
	}
}

func (s *MemoryStore) Get(key string) (interface{}, bool) {
	return s.cache.Get(key)
}

func (s *MemoryStore) Set(key string, value interface{}, ttl time.Duration) {
	s.cache.Set(key, value, ttl)
}

func (s *MemoryStore) Delete(key string) {
	s.cache.Delete(key)
}

func (s *MemoryStore) Flush() {
	s.cache.Flush()
}

// Remember returns the cached value under key, computing and storing it
// with fn on a miss. Errors from fn are returned without caching.
func Remember(s Store, key string, ttl time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}
	v, err := fn()
	if err != nil {
		return nil, err
	}
	s.Set(key, v, ttl)
	return v, nil
}
