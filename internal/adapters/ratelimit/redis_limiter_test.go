package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, limit int) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	l, err := NewRedisLimiter(rdb, limit, time.Minute)
	require.NoError(t, err)
	return l, mr
}

func TestAllowWithinWindow(t *testing.T) {
	l, _ := newLimiter(t, 2)
	clock := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "hit %d", i+1)
	}

	ok, err := l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "other clients have their own counter")

	clock = clock.Add(time.Minute)
	ok, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "next window starts fresh")
}

func TestAllowSetsExpiry(t *testing.T) {
	l, mr := newLimiter(t, 5)
	l.now = func() time.Time { return time.Unix(600, 0) }

	_, err := l.Allow(context.Background(), "client")
	require.NoError(t, err)

	key := "ratelimit:calculate:client:10"
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestAllowReportsRedisErrors(t *testing.T) {
	l, mr := newLimiter(t, 5)
	mr.Close()

	_, err := l.Allow(context.Background(), "client")
	assert.Error(t, err)
}

func TestNewRedisLimiterValidates(t *testing.T) {
	_, err := NewRedisLimiter(nil, 1, time.Minute)
	assert.Error(t, err)

	_, err = NewRedisLimiter(redis.NewClient(&redis.Options{}), 0, time.Minute)
	assert.Error(t, err)
}
