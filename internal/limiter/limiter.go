// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package limiter throttles repeated login attempts.
//
// Attempts are counted per key in fixed windows. A successful login resets
// the key, so in practice only failed attempts accumulate.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-auth-service/internal/config"
	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/redis/go-redis/v9"
)

var ErrConnectRedis = errors.New("error connecting to redis")

// Decision is the outcome of one counted attempt.
type Decision struct {
	Allowed   bool
	Remaining int

	// RetryAfter is the time left in the current window.
	RetryAfter time.Duration
}

// Limiter counts attempts per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Reset(ctx context.Context, key string) error
}

// incrWindow increments the counter and starts its window on the first hit.
// Returns {count, pttl}.
var incrWindow = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {current, ttl}
`)

// RedisLimiter is a fixed window counter shared by every server instance
// pointing at the same Redis.
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter allows cfg.LoginAttempts attempts per cfg.Window.
func NewRedisLimiter(client redis.Cmdable, cfg config.Limiter) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: "auth:login:",
		limit:  cfg.LoginAttempts,
		window: cfg.Window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	vals, err := incrWindow.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{Allowed: true}, fmt.Errorf("error counting attempt: %w", err)
	}
	if len(vals) != 2 {
		return Decision{Allowed: true}, fmt.Errorf("unexpected limiter reply %v", vals)
	}

	count, ttl := int(vals[0]), time.Duration(vals[1])*time.Millisecond
	if ttl < 0 {
		ttl = l.window
	}

	return Decision{
		Allowed:    count <= l.limit,
		Remaining:  max(l.limit-count, 0),
		RetryAfter: ttl,
	}, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.prefix+key).Err(); err != nil {
		return fmt.Errorf("error resetting attempts: %w", err)
	}
	return nil
}

// NopLimiter allows everything. It is used when no Redis is configured or
// the limit is zero.
type NopLimiter struct{}

func (NopLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{Allowed: true}, nil
}

func (NopLimiter) Reset(context.Context, string) error {
	return nil
}

// New returns a RedisLimiter when both a Redis address and a positive limit
// are configured, otherwise a NopLimiter. The returned close function
// releases the Redis client.
func New(ctx context.Context, redisCfg config.Redis, cfg config.Limiter, log *logger.Logger) (Limiter, func() error, error) {
	if redisCfg.Address == "" || cfg.LoginAttempts == 0 {
		log.Info().Msg("login rate limiting disabled")
		return NopLimiter{}, func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Address,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("%w: %w", ErrConnectRedis, err)
	}

	log.Info().
		Str("address", redisCfg.Address).
		Int("attempts", cfg.LoginAttempts).
		Dur("window", cfg.Window).
		Msg("login rate limiting enabled")
	return NewRedisLimiter(client, cfg), client.Close, nil
}
