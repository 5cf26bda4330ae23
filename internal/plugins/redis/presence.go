package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// presenceValue carries no information; the key's existence and TTL are
// the whole signal.
const presenceValue = "1"

type RedisPresenceStore struct {
	rdb *redis.Client
}

func NewRedisPresenceStore(rdb *redis.Client) *RedisPresenceStore {
	return &RedisPresenceStore{rdb: rdb}
}

// Refresh sets the presence key with the given TTL, creating it if absent.
// Last write wins; there is no read-modify-write cycle to race on.
func (p *RedisPresenceStore) Refresh(ctx context.Context, key string, ttl time.Duration) error {
	return p.rdb.SetEx(ctx, key, presenceValue, ttl).Err()
}

// Keys returns every non-expired presence key matching the pattern.
func (p *RedisPresenceStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	return p.rdb.Keys(ctx, pattern).Result()
}
