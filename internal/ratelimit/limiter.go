// Package ratelimit applies a fixed-window per-client limit to the
// eligibility endpoints. Counters live in Redis so every server instance
// shares the same window; when Redis is unreachable the limiter fails open
// rather than blocking determinations.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result describes one limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per key in fixed windows.
type Limiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
	clock  func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(l *Limiter) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// NewLimiter creates a fixed-window limiter. Limit is the number of requests
// allowed per window.
func NewLimiter(client redis.Cmdable, limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		client: client,
		limit:  limit,
		window: window,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records one request for key and reports whether it fits the window.
// The first request of a window owns the key expiry; the extra second covers
// clock skew between server and Redis.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	windowStart := l.clock().Truncate(l.window)
	redisKey := fmt.Sprintf("patra:ratelimit:%s:%d", key, windowStart.Unix())

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return nil, fmt.Errorf("increment rate limit counter: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window+time.Second).Err(); err != nil {
			return nil, fmt.Errorf("set rate limit expiry: %w", err)
		}
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   windowStart.Add(l.window),
	}, nil
}
