package ratelimit

import (
	"context"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RateLimitInfo captures limiter response metadata.
type RateLimitInfo struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter defines common interface.
type Limiter interface {
	Allow(ctx context.Context, key string) (RateLimitInfo, error)
}

// MemoryLimiter implements a leaky bucket per key over a fixed window.
type MemoryLimiter struct {
	limit  int
	burst  int
	window time.Duration
	store  map[string]*bucket
	mu     sync.Mutex
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewMemoryLimiter builds RAM limiter allowing limit requests per window.
func NewMemoryLimiter(limit, burst int, window time.Duration) *MemoryLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		limit:  limit,
		burst:  burst,
		window: window,
		store:  make(map[string]*bucket),
	}
}

// Allow implements Limiter.
func (m *MemoryLimiter) Allow(ctx context.Context, key string) (RateLimitInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	b, ok := m.store[key]
	if !ok {
		b = &bucket{tokens: float64(m.limit + m.burst - 1), last: now}
		m.store[key] = b
		return RateLimitInfo{Allowed: true, Limit: m.limit, Remaining: m.limit - 1, Reset: now.Add(m.window)}, nil
	}
	elapsed := now.Sub(b.last).Seconds() / m.window.Seconds()
	b.tokens = minFloat(float64(m.limit+m.burst), b.tokens+elapsed*float64(m.limit))
	if b.tokens >= 1 {
		b.tokens -= 1
		b.last = now
		return RateLimitInfo{Allowed: true, Limit: m.limit, Remaining: int(b.tokens), Reset: now.Add(m.window)}, nil
	}
	return RateLimitInfo{Allowed: false, Limit: m.limit, Remaining: 0, Reset: now.Add(m.window)}, nil
}

// RedisLimiter coordinates distributed throttling.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisLimiter builds redis limiter allowing limit requests per window.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{client: client, limit: limit, window: window, prefix: prefix}
}

// Allow implements Limiter with a fixed window counter. INCR creates the
// key at 1; the window TTL is attached on that first increment so the
// counter always expires.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (RateLimitInfo, error) {
	redisKey := r.prefix + ":" + key
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return RateLimitInfo{}, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, r.window).Err(); err != nil {
			return RateLimitInfo{}, err
		}
	}

	reset := time.Now().Add(r.window)
	if ttl, err := r.client.TTL(ctx, redisKey).Result(); err == nil && ttl > 0 {
		reset = time.Now().Add(ttl)
	}
	remaining := r.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitInfo{
		Allowed:   count <= int64(r.limit),
		Limit:     r.limit,
		Remaining: remaining,
		Reset:     reset,
	}, nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
