package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/siege-spider/spider-backend/pkg/logger"
)

// DefaultTTL 기본 캐시 TTL (15분)
const DefaultTTL = 900 * time.Second

// RedisCache best-effort JSON 캐시. Redis 오류는 호출자에게 전달하지 않는다.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCache client 가 nil 이면 캐시 없이 항상 loader 를 호출한다
func NewRedisCache(client *redis.Client, keyPrefix string) *RedisCache {
	return &RedisCache{client: client, keyPrefix: keyPrefix}
}

// GetOrLoad 캐시 조회 후 없으면 loader 실행 결과를 ttl 동안 저장
func GetOrLoad[T any](ctx context.Context, c *RedisCache, key string, ttl time.Duration, loader func(ctx context.Context) (T, error)) (T, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	var cached T
	if c.get(ctx, key, &cached) {
		return cached, nil
	}

	value, err := loader(ctx)
	if err != nil {
		return value, err
	}

	c.set(ctx, key, value, ttl)
	return value, nil
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) bool {
	if c == nil || c.client == nil {
		return false
	}

	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		logger.Warn("Cache read failed", "key", key, "error", err)
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Warn("Cache entry is not valid JSON", "key", key, "error", err)
		return false
	}

	return true
}

func (c *RedisCache) set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Cache value is not serializable", "key", key, "error", err)
		return
	}

	if err := c.client.Set(ctx, c.keyPrefix+key, raw, ttl).Err(); err != nil {
		logger.Warn("Cache write failed", "key", key, "error", err)
	}
}
