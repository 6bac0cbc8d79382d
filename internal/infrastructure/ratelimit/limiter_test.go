package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisTestLimiter(t *testing.T, limit int, window time.Duration) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, limit, window, "ratelimit:test"), srv
}

func TestRedisLimiterFirstRequestAllowed(t *testing.T) {
	limiter, srv := newRedisTestLimiter(t, 5, time.Minute)

	info, err := limiter.Allow(context.Background(), "ip:1.2.3.4")

	require.NoError(t, err)
	require.True(t, info.Allowed)
	require.Equal(t, 4, info.Remaining)
	require.Greater(t, srv.TTL("ratelimit:test:ip:1.2.3.4"), time.Duration(0))
}

func TestRedisLimiterDeniesOverLimit(t *testing.T) {
	limiter, _ := newRedisTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		info, err := limiter.Allow(context.Background(), "ip:5.6.7.8")
		require.NoError(t, err)
		require.True(t, info.Allowed, "request %d", i)
	}

	info, err := limiter.Allow(context.Background(), "ip:5.6.7.8")
	require.NoError(t, err)
	require.False(t, info.Allowed)
	require.Equal(t, 0, info.Remaining)
}

func TestRedisLimiterWindowExpires(t *testing.T) {
	limiter, srv := newRedisTestLimiter(t, 1, time.Minute)

	info, err := limiter.Allow(context.Background(), "gen:key")
	require.NoError(t, err)
	require.True(t, info.Allowed)

	info, err = limiter.Allow(context.Background(), "gen:key")
	require.NoError(t, err)
	require.False(t, info.Allowed)

	srv.FastForward(time.Minute + time.Second)

	info, err = limiter.Allow(context.Background(), "gen:key")
	require.NoError(t, err)
	require.True(t, info.Allowed)
}

func TestRedisLimiterIsolatesKeys(t *testing.T) {
	limiter, _ := newRedisTestLimiter(t, 1, time.Minute)

	info, err := limiter.Allow(context.Background(), "ip:1.1.1.1")
	require.NoError(t, err)
	require.True(t, info.Allowed)

	info, err = limiter.Allow(context.Background(), "ip:2.2.2.2")
	require.NoError(t, err)
	require.True(t, info.Allowed)
}

func TestMemoryLimiterAllowsWithinLimit(t *testing.T) {
	limiter := NewMemoryLimiter(5, 0, time.Minute)

	for i := 0; i < 5; i++ {
		info, err := limiter.Allow(context.Background(), "ip:1.2.3.4")
		require.NoError(t, err)
		require.True(t, info.Allowed, "request %d", i)
	}

	info, err := limiter.Allow(context.Background(), "ip:1.2.3.4")
	require.NoError(t, err)
	require.False(t, info.Allowed)
	require.Equal(t, 0, info.Remaining)
}

func TestMemoryLimiterIsolatesKeys(t *testing.T) {
	limiter := NewMemoryLimiter(1, 0, time.Minute)

	info, err := limiter.Allow(context.Background(), "ip:1.1.1.1")
	require.NoError(t, err)
	require.True(t, info.Allowed)

	info, err = limiter.Allow(context.Background(), "ip:1.1.1.1")
	require.NoError(t, err)
	require.False(t, info.Allowed)

	info, err = limiter.Allow(context.Background(), "ip:2.2.2.2")
	require.NoError(t, err)
	require.True(t, info.Allowed)
}

func TestMemoryLimiterRefills(t *testing.T) {
	limiter := NewMemoryLimiter(2, 0, 50*time.Millisecond)

	for i := 0; i < 2; i++ {
		info, err := limiter.Allow(context.Background(), "gen:key")
		require.NoError(t, err)
		require.True(t, info.Allowed, "request %d", i)
	}
	info, err := limiter.Allow(context.Background(), "gen:key")
	require.NoError(t, err)
	require.False(t, info.Allowed)

	time.Sleep(40 * time.Millisecond)

	info, err = limiter.Allow(context.Background(), "gen:key")
	require.NoError(t, err)
	require.True(t, info.Allowed)
}
