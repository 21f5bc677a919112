package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, cfg Config) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l, err := NewRedisLimiter(client, cfg)
	require.NoError(t, err)
	return l, mr
}

func TestNewRedisLimiter_Validation(t *testing.T) {
	_, err := NewRedisLimiter(nil, Config{MaxAttempts: 0, Cooldown: time.Minute})
	assert.Error(t, err)
	_, err = NewRedisLimiter(nil, Config{MaxAttempts: 3})
	assert.Error(t, err)
}

func TestRedisLimiter_BudgetAndCooldown(t *testing.T) {
	l, mr := newLimiter(t, Config{MaxAttempts: 3, Cooldown: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Allow(ctx, "alice123", "10.0.0.1"), "attempt %d", i)
	}
	assert.ErrorIs(t, l.Allow(ctx, "alice123", "10.0.0.1"), common.ErrRateLimited)

	// other users are unaffected
	assert.NoError(t, l.Allow(ctx, "bob12345", "10.0.0.1"))

	ttl := mr.TTL(userKey("alice123"))
	assert.Equal(t, time.Minute, ttl)

	mr.FastForward(time.Minute + time.Second)
	assert.NoError(t, l.Allow(ctx, "alice123", "10.0.0.1"))
}

func TestRedisLimiter_ConcurrentBurst(t *testing.T) {
	l, _ := newLimiter(t, Config{MaxAttempts: 5, Cooldown: time.Minute})
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		allowed atomic.Int64
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow(ctx, "alice123", "") == nil {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), allowed.Load())
}

func TestRedisLimiter_UnknownUsersCountToo(t *testing.T) {
	l, mr := newLimiter(t, Config{MaxAttempts: 1, Cooldown: time.Minute})
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "ghost999", ""))
	assert.ErrorIs(t, l.Allow(ctx, "ghost999", ""), common.ErrRateLimited)
	assert.True(t, mr.Exists(userKey("ghost999")))
}

func TestRedisLimiter_Reset(t *testing.T) {
	l, _ := newLimiter(t, Config{MaxAttempts: 2, Cooldown: time.Minute, PerAddress: true})
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "alice123", "10.0.0.1"))
	require.NoError(t, l.Allow(ctx, "alice123", "10.0.0.1"))
	require.ErrorIs(t, l.Allow(ctx, "alice123", "10.0.0.1"), common.ErrRateLimited)

	require.NoError(t, l.Reset(ctx, "alice123", "10.0.0.1"))
	assert.NoError(t, l.Allow(ctx, "alice123", "10.0.0.1"))
}

func TestRedisLimiter_PerAddress(t *testing.T) {
	l, _ := newLimiter(t, Config{MaxAttempts: 2, Cooldown: time.Minute, PerAddress: true})
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "user0001", "10.0.0.9"))
	require.NoError(t, l.Allow(ctx, "user0002", "10.0.0.9"))

	// a fresh username from the same address is refused
	assert.ErrorIs(t, l.Allow(ctx, "user0003", "10.0.0.9"), common.ErrRateLimited)
	// the same username from elsewhere is not
	assert.NoError(t, l.Allow(ctx, "user0001", "10.0.0.10"))
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	l, mr := newLimiter(t, Config{MaxAttempts: 2, Cooldown: time.Minute})
	ctx := context.Background()
	mr.Close()

	assert.ErrorIs(t, l.Allow(ctx, "alice123", ""), ErrUnavailable)
	assert.ErrorIs(t, l.Reset(ctx, "alice123", ""), ErrUnavailable)
}

func TestNoop(t *testing.T) {
	var l Limiter = Noop{}
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Allow(ctx, "alice123", "10.0.0.1"))
	}
	assert.NoError(t, l.Reset(ctx, "alice123", "10.0.0.1"))
}
