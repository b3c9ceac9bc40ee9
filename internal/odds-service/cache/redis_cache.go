package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implementa Cache sobre um cliente Redis compartilhado entre processos
type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache cria o adaptador Redis
func NewRedisCache(c *redis.Client) *RedisCache { return &RedisCache{Client: c} }

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set grava o valor com TTL; ttl <= 0 significa sem expiração
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.Client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.Client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
