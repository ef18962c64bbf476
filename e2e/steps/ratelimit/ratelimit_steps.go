// Package ratelimit holds step definitions for the per-client request limit.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the suite context these steps need.
type TestContext interface {
	GET(path string, headers map[string]string) error
	GetLastResponseStatus() int
}

// RegisterSteps registers rate-limiting step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I send (\d+) requests to "([^"]*)" in quick succession$`, steps.sendBurst)
	ctx.Step(`^at least one response should be rate limited$`, steps.sawRateLimited)
	ctx.Step(`^no response should be rate limited$`, steps.sawNoRateLimited)
}

type ratelimitSteps struct {
	tc TestContext

	limited int
	sent    int
}

func (s *ratelimitSteps) sendBurst(ctx context.Context, count int, path string) error {
	s.limited = 0
	s.sent = count
	for i := 0; i < count; i++ {
		if err := s.tc.GET(path, nil); err != nil {
			return err
		}
		if s.tc.GetLastResponseStatus() == http.StatusTooManyRequests {
			s.limited++
		}
	}
	return nil
}

func (s *ratelimitSteps) sawRateLimited(ctx context.Context) error {
	if s.limited == 0 {
		return fmt.Errorf("none of the %d requests were rate limited", s.sent)
	}
	return nil
}

func (s *ratelimitSteps) sawNoRateLimited(ctx context.Context) error {
	if s.limited > 0 {
		return fmt.Errorf("%d of %d requests were rate limited", s.limited, s.sent)
	}
	return nil
}
