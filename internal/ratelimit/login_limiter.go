package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/domain"
)

// LoginLimiter tracks failed logins per account name.
type LoginLimiter interface {
	Locked(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

const keyPrefix = "auth:login:failures:"

// RedisLimiter counts failures in Redis with a fixed window that doubles as the lockout.
type RedisLimiter struct {
	client      *redis.Client
	maxFailures int64
	window      time.Duration
	logger      *zap.Logger
}

// NewRedisLimiter builds a limiter. A non-positive maxFailures disables locking.
func NewRedisLimiter(client *redis.Client, maxFailures int, window time.Duration, logger *zap.Logger) *RedisLimiter {
	return &RedisLimiter{
		client:      client,
		maxFailures: int64(maxFailures),
		window:      window,
		logger:      logger,
	}
}

func (l *RedisLimiter) key(username string) string {
	return keyPrefix + domain.NormalizeName(username)
}

// Locked reports whether the name has reached the failure limit. Redis errors fail open.
func (l *RedisLimiter) Locked(ctx context.Context, username string) (bool, error) {
	if l.maxFailures <= 0 {
		return false, nil
	}
	val, err := l.client.Get(ctx, l.key(username)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		l.logger.Warn("login limiter unavailable", zap.Error(err))
		return false, nil
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, nil
	}
	return count >= l.maxFailures, nil
}

// RecordFailure increments the counter and (re)arms its expiry.
func (l *RedisLimiter) RecordFailure(ctx context.Context, username string) error {
	if l.maxFailures <= 0 {
		return nil
	}
	pipe := l.client.Pipeline()
	pipe.Incr(ctx, l.key(username))
	pipe.Expire(ctx, l.key(username), l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Warn("login limiter record failed", zap.Error(err))
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *RedisLimiter) Reset(ctx context.Context, username string) error {
	if err := l.client.Del(ctx, l.key(username)).Err(); err != nil {
		l.logger.Warn("login limiter reset failed", zap.Error(err))
	}
	return nil
}

// Noop never locks anyone out.
type Noop struct{}

func (Noop) Locked(context.Context, string) (bool, error) { return false, nil }
func (Noop) RecordFailure(context.Context, string) error  { return nil }
func (Noop) Reset(context.Context, string) error          { return nil }

var (
	_ LoginLimiter = (*RedisLimiter)(nil)
	_ LoginLimiter = Noop{}
)
