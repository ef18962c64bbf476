// Package e2e drives Gherkin scenarios against a running patra stack.
//
// The suite is black box: every step goes over HTTP using client
// credentials provisioned for the test environment. Point it at a stack
// with PATRA_E2E_URL and run go test.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TestContext holds per-scenario state: the credentials the suite was
// launched with, the bearer token the scenario authenticated with, and the
// last response.
type TestContext struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	accessToken string
	lastStatus  int
	lastBody    []byte
}

// NewTestContext builds a context for one suite run.
func NewTestContext(baseURL, clientID, clientSecret string) *TestContext {
	return &TestContext{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears scenario state. Registered as a before-scenario hook so
// scenarios cannot leak tokens or responses into each other.
func (tc *TestContext) Reset() {
	tc.accessToken = ""
	tc.lastStatus = 0
	tc.lastBody = nil
}

// ClientID returns the provisioned client id.
func (tc *TestContext) ClientID() string { return tc.clientID }

// ClientSecret returns the provisioned client secret.
func (tc *TestContext) ClientSecret() string { return tc.clientSecret }

// Authenticate requests a client-credentials token with the given scope and
// stores it for subsequent requests. An empty scope requests the client's
// full grant.
func (tc *TestContext) Authenticate(scope string) error {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {tc.clientID},
		"client_secret": {tc.clientSecret},
	}
	if scope != "" {
		form.Set("scope", scope)
	}
	if err := tc.PostForm("/auth/token", form); err != nil {
		return err
	}
	if tc.lastStatus != http.StatusOK {
		return fmt.Errorf("token request failed with status %d: %s", tc.lastStatus, tc.lastBody)
	}
	token, err := tc.GetResponseField("access_token")
	if err != nil {
		return err
	}
	s, ok := token.(string)
	if !ok || s == "" {
		return fmt.Errorf("token response carried no access_token: %s", tc.lastBody)
	}
	tc.accessToken = s
	return nil
}

// POST sends a JSON request, attaching the bearer token when one is set.
func (tc *TestContext) POST(path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

// PostForm sends a form-encoded request without a bearer token. The token
// endpoint is the only form consumer and must work unauthenticated.
func (tc *TestContext) PostForm(path string, form url.Values) error {
	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return tc.send(req)
}

// GET sends a GET request with optional extra headers. An explicit
// Authorization header wins over the stored token.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequest(http.MethodGet, tc.baseURL+path, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	if tc.accessToken != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}
	return tc.send(req)
}

func (tc *TestContext) send(req *http.Request) error {
	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	tc.lastStatus = resp.StatusCode
	tc.lastBody = body
	return nil
}

// SetAccessToken overrides the stored bearer token.
func (tc *TestContext) SetAccessToken(token string) { tc.accessToken = token }

// GetAccessToken returns the stored bearer token, if any.
func (tc *TestContext) GetAccessToken() string { return tc.accessToken }

// GetLastResponseStatus returns the status code of the last response.
func (tc *TestContext) GetLastResponseStatus() int { return tc.lastStatus }

// GetLastResponseBody returns the raw body of the last response.
func (tc *TestContext) GetLastResponseBody() []byte { return tc.lastBody }

// GetResponseField reads a top-level field from the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var payload map[string]any
	if err := json.Unmarshal(tc.lastBody, &payload); err != nil {
		return nil, fmt.Errorf("last response is not a JSON object: %w", err)
	}
	value, ok := payload[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response: %s", field, tc.lastBody)
	}
	return value, nil
}

// ResponseContains reports whether the last JSON response has the field.
func (tc *TestContext) ResponseContains(field string) bool {
	_, err := tc.GetResponseField(field)
	return err == nil
}
