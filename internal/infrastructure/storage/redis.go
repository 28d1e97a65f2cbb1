package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/servicehub/marketplace-client/internal/core/ports"
)

const (
	defaultRedisTimeout = 5 * time.Second
	// DefaultRedisKey is the single key holding the bearer token.
	DefaultRedisKey = "marketplace:token"
)

// RedisConfig captures the settings for the Redis token backend.
type RedisConfig struct {
	Addr    string
	DB      int
	Key     string
	Timeout time.Duration
}

// ConnectRedis initialises a Redis client and validates connectivity with
// a ping. A default timeout is applied when none is provided.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// RedisBackend stores the token under one key without expiry; the server
// decides when a token stops being valid.
type RedisBackend struct {
	client *redis.Client
	key    string
}

var _ ports.TokenBackend = (*RedisBackend)(nil)

func NewRedisBackend(client *redis.Client, key string) *RedisBackend {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisBackend{client: client, key: key}
}

func (r *RedisBackend) Load(ctx context.Context) (string, bool, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get token: %w", err)
	}
	return token, token != "", nil
}

func (r *RedisBackend) Save(ctx context.Context, token string) error {
	if err := r.client.Set(ctx, r.key, token, 0).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del token: %w", err)
	}
	return nil
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
