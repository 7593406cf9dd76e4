package distributed

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // 테스트용 DB
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available:", err)
	}

	// 테스트 전 DB 초기화
	client.FlushDB(ctx)

	return client
}

func TestRedisLock_AcquireAndRelease(t *testing.T) {
	client := setupRedisClient(t)
	defer client.Close()

	manager := NewRedisLockManager(client, "test:lock:", LockOptions{TTL: 5 * time.Second})
	ctx := context.Background()

	lock, err := manager.AcquireLock(ctx, "sig-a")
	require.NoError(t, err)
	require.NotNil(t, lock)

	// 동일한 키로 다시 획득 시도 (실패해야 함)
	lock2, err := manager.AcquireLock(ctx, "sig-a")
	assert.Equal(t, ErrLockNotAcquired, err)
	assert.Nil(t, lock2)

	// 다른 시그니처는 독립적
	other, err := manager.AcquireLock(ctx, "sig-b")
	require.NoError(t, err)
	defer other.Release(ctx)

	require.NoError(t, lock.Release(ctx))

	lock3, err := manager.AcquireLock(ctx, "sig-a")
	assert.NoError(t, err)
	defer lock3.Release(ctx)
}

func TestRedisLock_AutoExpire(t *testing.T) {
	client := setupRedisClient(t)
	defer client.Close()

	manager := NewRedisLockManager(client, "test:lock:", LockOptions{TTL: time.Second})
	ctx := context.Background()

	lock, err := manager.AcquireLock(ctx, "expire")
	require.NoError(t, err)

	held, err := lock.IsHeld(ctx)
	require.NoError(t, err)
	assert.True(t, held)

	time.Sleep(1500 * time.Millisecond)

	held, err = lock.IsHeld(ctx)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestRedisLock_LockWaitsForRelease(t *testing.T) {
	client := setupRedisClient(t)
	defer client.Close()

	manager := NewRedisLockManager(client, "test:lock:", LockOptions{
		TTL:           5 * time.Second,
		MaxRetries:    10,
		RetryInterval: 100 * time.Millisecond,
	})
	ctx := context.Background()

	first, err := manager.AcquireLock(ctx, "retry")
	require.NoError(t, err)

	go func() {
		time.Sleep(300 * time.Millisecond)
		first.Release(context.Background())
	}()

	start := time.Now()
	second, err := manager.Lock(ctx, "retry")
	require.NoError(t, err)
	defer second.Release(ctx)

	assert.Greater(t, time.Since(start), 200*time.Millisecond)
}

func TestRedisLock_LockGivesUp(t *testing.T) {
	client := setupRedisClient(t)
	defer client.Close()

	manager := NewRedisLockManager(client, "test:lock:", LockOptions{
		TTL:           5 * time.Second,
		MaxRetries:    3,
		RetryInterval: 10 * time.Millisecond,
	})
	ctx := context.Background()

	held, err := manager.AcquireLock(ctx, "busy")
	require.NoError(t, err)
	defer held.Release(ctx)

	_, err = manager.Lock(ctx, "busy")
	assert.Equal(t, ErrLockNotAcquired, err)
}

func TestRedisLock_SafeRelease(t *testing.T) {
	client := setupRedisClient(t)
	defer client.Close()

	manager := NewRedisLockManager(client, "test:lock:", LockOptions{TTL: time.Second})
	ctx := context.Background()

	lock1, err := manager.AcquireLock(ctx, "safe")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	lock2, err := manager.AcquireLock(ctx, "safe")
	require.NoError(t, err)
	defer lock2.Release(ctx)

	// 만료된 락의 소유자는 다른 인스턴스의 락을 해제할 수 없다
	assert.Equal(t, ErrLockNotHeld, lock1.Release(ctx))

	held, err := lock2.IsHeld(ctx)
	require.NoError(t, err)
	assert.True(t, held)
}

func TestRedisLock_ConcurrentAcquire(t *testing.T) {
	client := setupRedisClient(t)
	defer client.Close()

	manager := NewRedisLockManager(client, "test:lock:", LockOptions{TTL: 2 * time.Second})

	const numGoroutines = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
	)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := manager.AcquireLock(context.Background(), "concurrent"); err == nil {
				mu.Lock()
				winners = append(winners, fmt.Sprintf("instance%d", id))
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, winners, 1, "Only one instance should acquire the lock")
}
