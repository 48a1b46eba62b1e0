package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/parkinglot/config"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// AcquireSessionLock guards one exit at a time per session.
func (c *RedisCache) AcquireSessionLock(ctx context.Context, sessionID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, sessionLockKey(sessionID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSessionLock(ctx context.Context, sessionID int64) error {
	return c.client.Del(ctx, sessionLockKey(sessionID)).Err()
}

// RevokeToken marks a token id as logged out until its natural expiry.
func (c *RedisCache) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, revokedKey(jti), "1", ttl).Err()
}

func (c *RedisCache) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := c.client.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkAlerted records a long-stay alert for a session; it returns false when
// the session was already alerted.
func (c *RedisCache) MarkAlerted(ctx context.Context, sessionID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, alertKey(sessionID), "1", ttl).Result()
}

func sessionLockKey(sessionID int64) string {
	return fmt.Sprintf("lock:session:%d", sessionID)
}

func revokedKey(jti string) string {
	return "auth:revoked:" + jti
}

func alertKey(sessionID int64) string {
	return fmt.Sprintf("alert:long_stay:%d", sessionID)
}
