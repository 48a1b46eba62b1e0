package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is the single-process stand-in for RedisCache, used when no
// redis address is configured.
type MemoryCache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now, entries: make(map[string]time.Time)}
}

func (c *MemoryCache) setNX(key string, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweep(now)
	if exp, ok := c.entries[key]; ok && now.Before(exp) {
		return false
	}
	c.entries[key] = now.Add(ttl)
	return true
}

// sweep drops expired entries. Callers hold mu.
func (c *MemoryCache) sweep(now time.Time) {
	for key, exp := range c.entries {
		if !now.Before(exp) {
			delete(c.entries, key)
		}
	}
}

func (c *MemoryCache) AcquireSessionLock(_ context.Context, sessionID int64, ttl time.Duration) (bool, error) {
	return c.setNX(sessionLockKey(sessionID), ttl), nil
}

func (c *MemoryCache) ReleaseSessionLock(_ context.Context, sessionID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sessionLockKey(sessionID))
	return nil
}

func (c *MemoryCache) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.sweep(now)
	c.entries[revokedKey(jti)] = now.Add(ttl)
	return nil
}

func (c *MemoryCache) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := revokedKey(jti)
	exp, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	if !c.now().Before(exp) {
		delete(c.entries, key)
		return false, nil
	}
	return true, nil
}

func (c *MemoryCache) MarkAlerted(_ context.Context, sessionID int64, ttl time.Duration) (bool, error) {
	return c.setNX(alertKey(sessionID), ttl), nil
}
