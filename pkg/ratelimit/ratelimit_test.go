package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupLimiter needs a reachable Redis server; the test is skipped without one.
func setupLimiter(t *testing.T) *Limiter {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis server not available: %v", err)
	}

	t.Cleanup(func() { client.Close() })

	return New(client, Config{
		KeyPrefix:    "test:ratelimit:",
		DefaultLimit: 5,
		DefaultTTL:   time.Minute,
	})
}

func TestLimiter_Allow(t *testing.T) {
	limiter := setupLimiter(t)

	ctx := context.Background()
	key := "user:allow"
	defer limiter.Reset(ctx, key)

	allowed, info, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, allowed, "first request is always allowed")
	assert.Equal(t, 5, info.Limit)
	assert.Equal(t, 4, info.Remaining)
}

func TestLimiter_ExhaustsBudget(t *testing.T) {
	limiter := setupLimiter(t)

	ctx := context.Background()
	key := "user:exhaust"
	defer limiter.Reset(ctx, key)

	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.AllowN(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should fit the budget", i+1)
	}

	allowed, info, err := limiter.AllowN(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "budget exhausted")
	assert.Equal(t, 0, info.Remaining)
}

func TestLimiter_ResetRestoresBudget(t *testing.T) {
	limiter := setupLimiter(t)

	ctx := context.Background()
	key := "user:reset"

	for i := 0; i < 2; i++ {
		_, _, err := limiter.AllowN(ctx, key, 2, time.Minute)
		require.NoError(t, err)
	}

	require.NoError(t, limiter.Reset(ctx, key))

	allowed, _, err := limiter.AllowN(ctx, key, 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "reset should restore the full budget")
}
