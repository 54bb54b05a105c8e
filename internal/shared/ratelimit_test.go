package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRateLimiter(t *testing.T, limit int64, window time.Duration) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimiter(client, limit, window), mr
}

func TestRateLimiterEnforcesBudget(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}

	ok, err := rl.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRateLimiterIsolatesKeys(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 1, time.Minute)
	ctx := context.Background()

	ok, err := rl.Allow(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = rl.Allow(ctx, "u1")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = rl.Allow(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	rl, mr := newTestRateLimiter(t, 1, time.Second)
	ctx := context.Background()

	ok, err := rl.Allow(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = rl.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNilRateLimiterAllowsEverything(t *testing.T) {
	var rl *RateLimiter
	ok, err := rl.Allow(context.Background(), "anyone")
	require.NoError(t, err)
	assert.True(t, ok)
}
