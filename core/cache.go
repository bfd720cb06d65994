package core

import (
	"sync"
	"sync/atomic"
	"time"
)

type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats are simple counters for cache behavior.
// These are intended for diagnostics and monitoring.
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// InMemoryRoleCache memoizes (userID, workspaceID) -> role lookups so the
// authorization gate does not hit storage on every request. Entries expire
// after TTL; a short TTL bounds how stale a role change can be observed.
type InMemoryRoleCache struct {
	cache   map[string]*cachedRole
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int

	// counters
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

type cachedRole struct {
	role     Role
	cachedAt time.Time
}

var _ RoleCacheWithStats = (*InMemoryRoleCache)(nil)

func NewInMemoryRoleCache(c CacheConfig) *InMemoryRoleCache {
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.MaxSize == 0 {
		c.MaxSize = 500
	}

	return &InMemoryRoleCache{
		cache:   make(map[string]*cachedRole),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
	}
}

// MembershipCacheKey builds the cache key for one role assignment.
func MembershipCacheKey(userID, workspaceID string) string {
	return userID + "/" + workspaceID
}

func (c *InMemoryRoleCache) Get(key string) (Role, error) {
	c.mu.RLock()
	record, exists := c.cache[key]
	c.mu.RUnlock()

	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return "", ErrCacheNotFound
	}

	if time.Since(record.cachedAt) > c.ttl {
		atomic.AddInt64(&c.misses, 1)
		if err := c.Delete(key); err != nil {
			return "", err
		}
		return "", ErrCacheNotFound
	}

	atomic.AddInt64(&c.hits, 1)
	return record.role, nil
}

func (c *InMemoryRoleCache) Set(key string, role Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Simple eviction if full
	if len(c.cache) >= c.maxSize {
		for k := range c.cache {
			delete(c.cache, k)
			atomic.AddInt64(&c.evictions, 1)
			break
		}
	}

	c.cache[key] = &cachedRole{
		role:     role,
		cachedAt: time.Now(),
	}

	atomic.AddInt64(&c.sets, 1)
	return nil
}

func (c *InMemoryRoleCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.cache[key]; existed {
		delete(c.cache, key)
		atomic.AddInt64(&c.deletes, 1)
	}
	return nil
}

func (c *InMemoryRoleCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*cachedRole)
	return nil
}

func (c *InMemoryRoleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *InMemoryRoleCache) Stats() CacheStats {
	return CacheStats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}
