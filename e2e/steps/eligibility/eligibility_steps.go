// Package eligibility holds step definitions for submitting checks and
// asserting over the returned decision.
package eligibility

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the suite context these steps need.
type TestContext interface {
	POST(path string, body any) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers eligibility step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &eligibilitySteps{tc: tc}

	ctx.Step(`^I check eligibility for scheme "([^"]*)" with applicant:$`, steps.checkWithApplicant)

	ctx.Step(`^the decision should be eligible$`, steps.decisionEligible)
	ctx.Step(`^the decision should be ineligible$`, steps.decisionIneligible)
	ctx.Step(`^the decision should fail requirement "([^"]*)"$`, steps.decisionFailsRequirement)
	ctx.Step(`^the decision should list exclusion "([^"]*)"$`, steps.decisionListsExclusion)
	ctx.Step(`^the decision should apply special provision "([^"]*)"$`, steps.decisionAppliesProvision)
}

type eligibilitySteps struct {
	tc TestContext
}

func (s *eligibilitySteps) checkWithApplicant(ctx context.Context, scheme string, applicant *godog.DocString) error {
	if !json.Valid([]byte(applicant.Content)) {
		return fmt.Errorf("applicant docstring is not valid JSON")
	}
	return s.tc.POST("/eligibility/check", map[string]any{
		"scheme_code": scheme,
		"applicant":   json.RawMessage(applicant.Content),
	})
}

func (s *eligibilitySteps) decisionEligible(ctx context.Context) error {
	return s.eligibleIs(true)
}

func (s *eligibilitySteps) decisionIneligible(ctx context.Context) error {
	return s.eligibleIs(false)
}

func (s *eligibilitySteps) eligibleIs(want bool) error {
	value, err := s.tc.GetResponseField("eligible")
	if err != nil {
		return err
	}
	eligible, ok := value.(bool)
	if !ok {
		return fmt.Errorf("eligible is %T, not bool", value)
	}
	if eligible != want {
		return fmt.Errorf("expected eligible=%t, got %t: %s", want, eligible, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *eligibilitySteps) decisionFailsRequirement(ctx context.Context, field string) error {
	findings, err := s.tc.GetResponseField("failed_requirements")
	if err != nil {
		return err
	}
	items, ok := findings.([]any)
	if !ok {
		return fmt.Errorf("failed_requirements is %T, not a list", findings)
	}
	for _, item := range items {
		finding, ok := item.(map[string]any)
		if ok && finding["field"] == field {
			return nil
		}
	}
	return fmt.Errorf("no failed requirement for field %q: %s", field, s.tc.GetLastResponseBody())
}

func (s *eligibilitySteps) decisionListsExclusion(ctx context.Context, name string) error {
	return s.listContains("active_exclusions", name)
}

func (s *eligibilitySteps) decisionAppliesProvision(ctx context.Context, name string) error {
	return s.listContains("applied_special_provisions", name)
}

func (s *eligibilitySteps) listContains(field, want string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	items, ok := value.([]any)
	if !ok {
		return fmt.Errorf("%s is %T, not a list", field, value)
	}
	for _, item := range items {
		if item == want {
			return nil
		}
	}
	return fmt.Errorf("%s does not contain %q: %s", field, want, s.tc.GetLastResponseBody())
}
