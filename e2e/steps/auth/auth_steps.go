// Package auth holds step definitions for the client-credentials token flow.
package auth

import (
	"context"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the suite context these steps need.
type TestContext interface {
	PostForm(path string, form url.Values) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	SetAccessToken(token string)
	ClientID() string
	ClientSecret() string
}

// RegisterSteps registers token issuance step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I request a token with valid credentials$`, steps.requestTokenValid)
	ctx.Step(`^I request a token with an invalid client secret$`, steps.requestTokenInvalidSecret)
	ctx.Step(`^I request a token with grant_type "([^"]*)"$`, steps.requestTokenWithGrantType)
	ctx.Step(`^I save the issued access token$`, steps.saveAccessToken)
	ctx.Step(`^I GET "([^"]*)" with bearer token "([^"]*)"$`, steps.getWithBearerToken)
}

type authSteps struct {
	tc TestContext
}

func (s *authSteps) requestTokenValid(ctx context.Context) error {
	return s.tc.PostForm("/auth/token", url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {s.tc.ClientID()},
		"client_secret": {s.tc.ClientSecret()},
	})
}

func (s *authSteps) requestTokenInvalidSecret(ctx context.Context) error {
	return s.tc.PostForm("/auth/token", url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {s.tc.ClientID()},
		"client_secret": {"not-the-secret"},
	})
}

func (s *authSteps) requestTokenWithGrantType(ctx context.Context, grantType string) error {
	return s.tc.PostForm("/auth/token", url.Values{
		"grant_type":    {grantType},
		"client_id":     {s.tc.ClientID()},
		"client_secret": {s.tc.ClientSecret()},
	})
}

func (s *authSteps) saveAccessToken(ctx context.Context) error {
	token, err := s.tc.GetResponseField("access_token")
	if err != nil {
		return err
	}
	s.tc.SetAccessToken(token.(string))
	return nil
}

func (s *authSteps) getWithBearerToken(ctx context.Context, path, token string) error {
	return s.tc.GET(path, map[string]string{
		"Authorization": "Bearer " + token,
	})
}
