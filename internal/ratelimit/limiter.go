// Package ratelimit throttles repeated failed logins. Counters live in Redis
// so the API process itself keeps no state between requests.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTooManyAttempts is returned once a key exhausted its attempts for the window.
var ErrTooManyAttempts = errors.New("too many attempts, try again later")

// Limiter counts failures per key inside a fixed window.
type Limiter interface {
	// Allow returns ErrTooManyAttempts when the key may not try again yet.
	Allow(ctx context.Context, key string) error
	// Fail records one failed attempt.
	Fail(ctx context.Context, key string) error
	// Reset clears the key after a successful attempt.
	Reset(ctx context.Context, key string) error
}

// LoginKey builds the counter key for a client address and email.
func LoginKey(clientIP, email string) string {
	return "login:" + clientIP + ":" + strings.ToLower(strings.TrimSpace(email))
}

// Noop never limits. It is used when Redis is not configured.
type Noop struct{}

func (Noop) Allow(context.Context, string) error { return nil }
func (Noop) Fail(context.Context, string) error  { return nil }
func (Noop) Reset(context.Context, string) error { return nil }

// RedisLimiter keeps one INCR counter per key that expires with the window.
type RedisLimiter struct {
	rdb         redis.Cmdable
	maxAttempts int64
	window      time.Duration
	prefix      string
}

func NewRedisLimiter(rdb redis.Cmdable, maxAttempts int, window time.Duration) *RedisLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RedisLimiter{
		rdb:         rdb,
		maxAttempts: int64(maxAttempts),
		window:      window,
		prefix:      "ratelimit:",
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) error {
	k := l.prefix + key
	var (
		get *redis.StringCmd
		ttl *redis.DurationCmd
	)
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.Get(ctx, k)
		ttl = pipe.TTL(ctx, k)
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read attempts: %w", err)
	}
	n, err := get.Int64()
	if err != nil {
		return fmt.Errorf("read attempts: %w", err)
	}
	if err := l.ensureExpiry(ctx, k, ttl.Val()); err != nil {
		return err
	}
	if n >= l.maxAttempts {
		return ErrTooManyAttempts
	}
	return nil
}

func (l *RedisLimiter) Fail(ctx context.Context, key string) error {
	k := l.prefix + key
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		ttl = pipe.TTL(ctx, k)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	// the window is anchored at the first failure
	if err := l.ensureExpiry(ctx, k, ttl.Val()); err != nil {
		return err
	}
	if incr.Val() > l.maxAttempts {
		return ErrTooManyAttempts
	}
	return nil
}

// ensureExpiry sets the window on a counter that has none, either because it
// was just created or because an earlier EXPIRE never landed.
func (l *RedisLimiter) ensureExpiry(ctx context.Context, k string, ttl time.Duration) error {
	// TTL reports -1 for a key without expiry
	if ttl != -1 {
		return nil
	}
	if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
		return fmt.Errorf("expire attempts: %w", err)
	}
	return nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.rdb.Del(ctx, l.prefix+key).Err(); err != nil {
		return fmt.Errorf("reset attempts: %w", err)
	}
	return nil
}

// NewRedisClient creates and pings a Redis client.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
