package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestFixedWindowQuotaAndReset(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewFixedWindow(5, time.Minute).WithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if !l.Allow(ctx, "203.0.113.1") {
			t.Fatalf("request %d should pass", i+1)
		}
	}
	if l.Allow(ctx, "203.0.113.1") {
		t.Fatal("6th request within the window must be rejected")
	}
	if !l.Allow(ctx, "198.51.100.7") {
		t.Fatal("other keys have their own quota")
	}

	now = now.Add(59 * time.Second)
	if l.Allow(ctx, "203.0.113.1") {
		t.Fatal("still inside the window")
	}
	now = now.Add(time.Second)
	if !l.Allow(ctx, "203.0.113.1") {
		t.Fatal("counter should reset once the window elapses")
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 tracked keys, got %d", l.Len())
	}
}

func TestFixedWindowDefaults(t *testing.T) {
	l := NewFixedWindow(0, 0)
	if l.limit != DefaultLimit || l.window != DefaultWindow {
		t.Fatalf("unexpected defaults %d %s", l.limit, l.window)
	}
}

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedis(client, 5, time.Minute, WithKeyPrefix("ratelimit:contact"))
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if !l.Allow(ctx, "203.0.113.1") {
			t.Fatalf("request %d should pass", i+1)
		}
	}
	if l.Allow(ctx, "203.0.113.1") {
		t.Fatal("6th request must be rejected")
	}
	if ttl := mr.TTL("ratelimit:contact:203.0.113.1"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %s", ttl)
	}

	mr.FastForward(time.Minute)
	if !l.Allow(ctx, "203.0.113.1") {
		t.Fatal("counter should reset after the window")
	}
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	l := NewRedis(client, 1, time.Minute)
	for i := 0; i < 3; i++ {
		if !l.Allow(context.Background(), "k") {
			t.Fatal("limiter must fail open")
		}
	}
}
