//go:build integration

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"patra/internal/ratelimit"
	"patra/pkg/testutil/containers"
)

type LimiterSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	ctx   context.Context
}

func (s *LimiterSuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("skipping integration test in short mode")
	}
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.ctx = context.Background()
}

func (s *LimiterSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func TestLimiterSuite(t *testing.T) {
	suite.Run(t, new(LimiterSuite))
}

func (s *LimiterSuite) TestCountsDownAndThrottles() {
	limiter := ratelimit.NewLimiter(s.redis.Client, 3, time.Minute)

	for i := 0; i < 3; i++ {
		result, err := limiter.Allow(s.ctx, "client:portal")
		s.Require().NoError(err)
		s.True(result.Allowed, "request %d should be allowed", i+1)
		s.Equal(3, result.Limit)
		s.Equal(2-i, result.Remaining)
	}

	result, err := limiter.Allow(s.ctx, "client:portal")
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(0, result.Remaining)
}

func (s *LimiterSuite) TestKeysAreIndependent() {
	limiter := ratelimit.NewLimiter(s.redis.Client, 1, time.Minute)

	first, err := limiter.Allow(s.ctx, "client:portal-a")
	s.Require().NoError(err)
	s.True(first.Allowed)

	blocked, err := limiter.Allow(s.ctx, "client:portal-a")
	s.Require().NoError(err)
	s.False(blocked.Allowed)

	other, err := limiter.Allow(s.ctx, "client:portal-b")
	s.Require().NoError(err)
	s.True(other.Allowed)
}

func (s *LimiterSuite) TestWindowResets() {
	limiter := ratelimit.NewLimiter(s.redis.Client, 1, time.Second)

	result, err := limiter.Allow(s.ctx, "client:portal")
	s.Require().NoError(err)
	s.True(result.Allowed)

	result, err = limiter.Allow(s.ctx, "client:portal")
	s.Require().NoError(err)
	s.False(result.Allowed)

	// Wait for the next window
	time.Sleep(1500 * time.Millisecond)

	result, err = limiter.Allow(s.ctx, "client:portal")
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *LimiterSuite) TestResetAtAlignsToWindow() {
	now := time.Date(2024, 6, 1, 10, 30, 42, 0, time.UTC)
	limiter := ratelimit.NewLimiter(s.redis.Client, 5, time.Minute,
		ratelimit.WithClock(func() time.Time { return now }))

	result, err := limiter.Allow(s.ctx, "client:portal")
	s.Require().NoError(err)
	s.Equal(time.Date(2024, 6, 1, 10, 31, 0, 0, time.UTC), result.ResetAt)
}
