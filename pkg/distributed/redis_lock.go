package distributed

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("lock not acquired")
	ErrLockNotHeld     = errors.New("lock not held")
)

// 자신이 획득한 락만 해제
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// RedisLock Redis 기반 분산 락
type RedisLock struct {
	client *redis.Client
	key    string
	token  string
}

// LockOptions 락 획득 설정
type LockOptions struct {
	TTL           time.Duration // 락 최대 유지 시간
	MaxRetries    int           // 획득 시도 횟수
	RetryInterval time.Duration // 재시도 간격
}

// DefaultLockOptions 수집 트랜잭션 하나를 감싸기에 충분한 값
func DefaultLockOptions() LockOptions {
	return LockOptions{
		TTL:           10 * time.Second,
		MaxRetries:    20,
		RetryInterval: 50 * time.Millisecond,
	}
}

// RedisLockManager Redis 분산 락 관리자
type RedisLockManager struct {
	client    *redis.Client
	keyPrefix string
	opts      LockOptions
}

// NewRedisLockManager Redis Lock Manager 생성
func NewRedisLockManager(client *redis.Client, keyPrefix string, opts LockOptions) *RedisLockManager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultLockOptions().TTL
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}
	return &RedisLockManager{
		client:    client,
		keyPrefix: keyPrefix,
		opts:      opts,
	}
}

// AcquireLock 분산 락 1회 획득 시도 (SET NX)
func (m *RedisLockManager) AcquireLock(ctx context.Context, key string) (*RedisLock, error) {
	lock := &RedisLock{
		client: m.client,
		key:    m.keyPrefix + key,
		token:  uuid.NewString(),
	}

	success, err := m.client.SetNX(ctx, lock.key, lock.token, m.opts.TTL).Result()
	if err != nil {
		return nil, err
	}

	if !success {
		return nil, ErrLockNotAcquired
	}

	return lock, nil
}

// Lock 재시도를 포함한 락 획득
func (m *RedisLockManager) Lock(ctx context.Context, key string) (*RedisLock, error) {
	for i := 0; i < m.opts.MaxRetries; i++ {
		lock, err := m.AcquireLock(ctx, key)
		if err == nil {
			return lock, nil
		}

		if err != ErrLockNotAcquired {
			return nil, err
		}

		// 재시도 전 대기
		if i < m.opts.MaxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(m.opts.RetryInterval):
			}
		}
	}

	return nil, ErrLockNotAcquired
}

// Release 락 해제
func (l *RedisLock) Release(ctx context.Context) error {
	result, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return err
	}

	if result == 0 {
		return ErrLockNotHeld
	}

	return nil
}

// IsHeld 락이 현재 유효한지 확인
func (l *RedisLock) IsHeld(ctx context.Context) (bool, error) {
	value, err := l.client.Get(ctx, l.key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return value == l.token, nil
}
