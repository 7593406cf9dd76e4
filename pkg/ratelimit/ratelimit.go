package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket implements the token bucket algorithm for rate limiting
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64   // Maximum number of tokens
	tokens     float64   // Current number of tokens
	refillRate float64   // Tokens added per second
	lastRefill time.Time // Last refill timestamp
	lastUsed   time.Time
}

// NewTokenBucket creates a full token bucket
func NewTokenBucket(capacity, refillRate int64, now time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: float64(refillRate),
		lastRefill: now,
		lastUsed:   now,
	}
}

// AllowAt consumes a token at the given instant if one is available
func (tb *TokenBucket) AllowAt(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if elapsed := now.Sub(tb.lastRefill).Seconds(); elapsed > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+elapsed*tb.refillRate)
		tb.lastRefill = now
	}
	tb.lastUsed = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}

	return false
}

// RateLimiter manages rate limits for multiple keys (client hosts)
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*TokenBucket
	capacity   int64
	refillRate int64
	idleTTL    time.Duration
	nowFn      func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(capacity, refillRate int64) *RateLimiter {
	return &RateLimiter{
		buckets:    make(map[string]*TokenBucket),
		capacity:   capacity,
		refillRate: refillRate,
		idleTTL:    10 * time.Minute,
		nowFn:      time.Now,
	}
}

// WithClock overrides the time provider (used in tests)
func (rl *RateLimiter) WithClock(nowFn func() time.Time) *RateLimiter {
	rl.nowFn = nowFn
	return rl
}

// Allow checks if a request from the given key is allowed
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.nowFn()

	rl.mu.Lock()
	bucket, ok := rl.buckets[key]
	if !ok {
		rl.evictIdle(now)
		bucket = NewTokenBucket(rl.capacity, rl.refillRate, now)
		rl.buckets[key] = bucket
	}
	rl.mu.Unlock()

	return bucket.AllowAt(now)
}

// evictIdle drops buckets nobody has used for idleTTL. Caller holds rl.mu.
func (rl *RateLimiter) evictIdle(now time.Time) {
	for key, bucket := range rl.buckets {
		bucket.mu.Lock()
		idle := now.Sub(bucket.lastUsed) > rl.idleTTL
		bucket.mu.Unlock()
		if idle {
			delete(rl.buckets, key)
		}
	}
}

// Len returns the number of tracked keys
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}
