package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupRedisClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // 테스트용 DB
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available:", err)
	}

	client.FlushDB(ctx)
	return client
}

// 연결되지 않는 Redis
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestGetOrLoad_UnreachableRedisFallsThrough(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	c := NewRedisCache(client, "test:")
	calls := 0

	for i := 0; i < 2; i++ {
		got, err := GetOrLoad(context.Background(), c, "k", time.Minute, func(ctx context.Context) (payload, error) {
			calls++
			return payload{Name: "fresh", Count: calls}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "fresh", got.Name)
	}

	// 캐시가 동작하지 않으므로 매번 loader 호출
	assert.Equal(t, 2, calls)
}

func TestGetOrLoad_NilClient(t *testing.T) {
	c := NewRedisCache(nil, "")

	got, err := GetOrLoad(context.Background(), c, "k", 0, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestGetOrLoad_LoaderErrorIsReturned(t *testing.T) {
	c := NewRedisCache(unreachableClient(), "")
	loadErr := errors.New("lookup failed")

	_, err := GetOrLoad(context.Background(), c, "k", time.Minute, func(ctx context.Context) (payload, error) {
		return payload{}, loadErr
	})
	assert.ErrorIs(t, err, loadErr)
}

func TestGetOrLoad_CachesValue(t *testing.T) {
	client := setupRedisClient(t)
	defer client.Close()

	c := NewRedisCache(client, "test:")
	ctx := context.Background()
	calls := 0
	loader := func(ctx context.Context) (payload, error) {
		calls++
		return payload{Name: "cached", Count: 7}, nil
	}

	first, err := GetOrLoad(ctx, c, "profile", time.Minute, loader)
	require.NoError(t, err)
	second, err := GetOrLoad(ctx, c, "profile", time.Minute, loader)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	ttl, err := client.TTL(ctx, "test:profile").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestGetOrLoad_CorruptEntryIsRecomputed(t *testing.T) {
	client := setupRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "test:bad", "{not json", time.Minute).Err())

	c := NewRedisCache(client, "test:")
	got, err := GetOrLoad(ctx, c, "bad", time.Minute, func(ctx context.Context) (payload, error) {
		return payload{Name: "recomputed"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recomputed", got.Name)
}
