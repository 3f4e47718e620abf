// Package cache provides the Redis-backed run lock rejecting concurrent
// export runs against the same destination.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	exportapp "github.com/feedbridge/backend/internal/application/export"
	infraconfig "github.com/feedbridge/backend/internal/infrastructure/config"
)

// Ensure RedisRunLock implements RunLock
var _ exportapp.RunLock = (*RedisRunLock)(nil)

// releaseScript deletes the lock only when the caller still owns it, so a
// run that outlived its TTL cannot release a lock re-acquired by another run.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRunLock is a Redis-based destination lock. Acquisition is a single
// atomic SET NX with TTL; the TTL bounds how long a crashed run can block
// the destination.
type RedisRunLock struct {
	client *redis.Client
}

// NewRedisRunLock creates a Redis-based run lock
func NewRedisRunLock(cfg *infraconfig.RedisConfig) (*RedisRunLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRunLock{client: client}, nil
}

// Acquire attempts to take the lock for owner. It returns false when another
// owner already holds it.
func (l *RedisRunLock) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	return ok, nil
}

// Release frees the lock if owner still holds it
func (l *RedisRunLock) Release(ctx context.Context, key, owner string) error {
	if err := releaseScript.Run(ctx, l.client, []string{key}, owner).Err(); err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}

// Close releases the Redis connection
func (l *RedisRunLock) Close() error {
	return l.client.Close()
}
