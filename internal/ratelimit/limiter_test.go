package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginKey(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "login:10.0.0.1:alice@example.com", LoginKey("10.0.0.1", "  Alice@Example.com "))
}

func TestNoop(t *testing.T) {
	t.Parallel()

	var l Limiter = Noop{}
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Fail(ctx, "k"))
	}
	assert.NoError(t, l.Allow(ctx, "k"))
	assert.NoError(t, l.Reset(ctx, "k"))
}

func newTestLimiter(t *testing.T) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisLimiter(rdb, 3, time.Minute), mr
}

func TestRedisLimiter(t *testing.T) {
	l, mr := newTestLimiter(t)
	ctx := context.Background()
	key := "login:10.0.0.1:alice@example.com"

	require.NoError(t, l.Allow(ctx, key))
	require.NoError(t, l.Fail(ctx, key))
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:"+key))
	require.NoError(t, l.Fail(ctx, key))
	require.NoError(t, l.Allow(ctx, key))
	require.NoError(t, l.Fail(ctx, key))
	assert.True(t, errors.Is(l.Allow(ctx, key), ErrTooManyAttempts))
	assert.True(t, errors.Is(l.Fail(ctx, key), ErrTooManyAttempts))

	// later failures do not extend the window
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:"+key))

	require.NoError(t, l.Reset(ctx, key))
	assert.NoError(t, l.Allow(ctx, key))
	assert.False(t, mr.Exists("ratelimit:"+key))
}

func TestRedisLimiter_WindowExpires(t *testing.T) {
	l, mr := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Fail(ctx, "k"))
	}
	require.ErrorIs(t, l.Allow(ctx, "k"), ErrTooManyAttempts)

	mr.FastForward(time.Minute)
	assert.NoError(t, l.Allow(ctx, "k"))
}

func TestRedisLimiter_RepairsCounterWithoutExpiry(t *testing.T) {
	l, mr := newTestLimiter(t)
	ctx := context.Background()

	// a blocked counter whose EXPIRE was lost
	require.NoError(t, mr.Set("ratelimit:blocked", "5"))
	require.ErrorIs(t, l.Allow(ctx, "blocked"), ErrTooManyAttempts)
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:blocked"))
	mr.FastForward(time.Minute)
	assert.NoError(t, l.Allow(ctx, "blocked"))

	require.NoError(t, mr.Set("ratelimit:counting", "1"))
	require.NoError(t, l.Fail(ctx, "counting"))
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:counting"))
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	l, mr := newTestLimiter(t)
	mr.Close()

	err := l.Allow(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTooManyAttempts))
}
