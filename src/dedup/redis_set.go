package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSet is a Deduplicator shared across processes. Each key is a Redis
// string with a TTL of Window.
type RedisSet struct {
	rdb    *redis.Client
	prefix string
	window time.Duration
}

// NewRedisSet connects and pings Redis.
func NewRedisSet(ctx context.Context, cfg Config) (*RedisSet, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return NewRedisSetFromClient(rdb, cfg.RedisPrefix, cfg.Window), nil
}

func NewRedisSetFromClient(rdb *redis.Client, prefix string, window time.Duration) *RedisSet {
	return &RedisSet{rdb: rdb, prefix: prefix, window: window}
}

func (s *RedisSet) key(k string) string { return s.prefix + k }

func (s *RedisSet) Seen(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis: exists %s: %w", key, err)
	}
	return n > 0, nil
}

func (s *RedisSet) Remember(ctx context.Context, key string) error {
	if err := s.rdb.Set(ctx, s.key(key), time.Now().UnixMilli(), s.window).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

// Claim is SET NX PX; a hit slides the expiry forward.
func (s *RedisSet) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.key(key), time.Now().UnixMilli(), s.window).Result()
	if err != nil {
		return false, fmt.Errorf("redis: setnx %s: %w", key, err)
	}
	if !ok && s.window > 0 {
		if err := s.rdb.PExpire(ctx, s.key(key), s.window).Err(); err != nil {
			return false, fmt.Errorf("redis: pexpire %s: %w", key, err)
		}
	}
	return ok, nil
}

func (s *RedisSet) Close() error {
	return s.rdb.Close()
}
