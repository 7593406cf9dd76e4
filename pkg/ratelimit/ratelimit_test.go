package ratelimit

import (
	"testing"
	"time"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestTokenBucket_AllowAt(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	bucket := NewTokenBucket(5, 1, start) // 5 capacity, 1 refill per second

	for i := 0; i < 5; i++ {
		if !bucket.AllowAt(start) {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if bucket.AllowAt(start) {
		t.Error("6th request should be denied")
	}

	if !bucket.AllowAt(start.Add(1100 * time.Millisecond)) {
		t.Error("Request after refill should be allowed")
	}
}

func TestTokenBucket_FractionalRefill(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	bucket := NewTokenBucket(1, 2, start)

	if !bucket.AllowAt(start) {
		t.Fatal("first request should be allowed")
	}
	// 2 tokens/s → 0.5s 후 1개
	if !bucket.AllowAt(start.Add(500 * time.Millisecond)) {
		t.Error("request after half a second should be allowed")
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	limiter := NewRateLimiter(2, 1).WithClock(clock.Now)

	for i := 0; i < 2; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Errorf("Request %d for 10.0.0.1 should be allowed", i+1)
		}
	}
	if limiter.Allow("10.0.0.1") {
		t.Error("3rd request for 10.0.0.1 should be denied")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Error("10.0.0.2 should have its own bucket")
	}
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	limiter := NewRateLimiter(1, 1).WithClock(clock.Now)

	limiter.Allow("a")
	limiter.Allow("b")
	if limiter.Len() != 2 {
		t.Fatalf("expected 2 buckets, got %d", limiter.Len())
	}

	clock.Advance(11 * time.Minute)
	limiter.Allow("c")

	if limiter.Len() != 1 {
		t.Errorf("expected idle buckets to be evicted, got %d", limiter.Len())
	}
}
