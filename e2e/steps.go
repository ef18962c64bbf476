package e2e

import (
	"github.com/cucumber/godog"

	"patra/e2e/steps/auth"
	"patra/e2e/steps/common"
	"patra/e2e/steps/eligibility"
	"patra/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from the modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic requests and assertions shared by every feature.
	common.RegisterSteps(ctx, tc)

	// Token issuance.
	auth.RegisterSteps(ctx, tc)

	// Eligibility checks and decision assertions.
	eligibility.RegisterSteps(ctx, tc)

	// Per-client rate limiting.
	ratelimit.RegisterSteps(ctx, tc)
}
