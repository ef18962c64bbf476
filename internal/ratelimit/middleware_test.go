package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patra/pkg/platform/audit"
	"patra/pkg/requestcontext"
)

var windowEnd = time.Now().Add(30 * time.Second)

type fakeChecker struct {
	result  *Result
	err     error
	lastKey string
}

func (f *fakeChecker) Allow(_ context.Context, key string) (*Result, error) {
	f.lastKey = key
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeAudit struct {
	events []audit.Event
}

func (f *fakeAudit) Emit(_ context.Context, event audit.Event) error {
	f.events = append(f.events, event)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func serveAs(clientID string, mw *Middleware, next http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/eligibility/check", nil)
	ctx := req.Context()
	if clientID != "" {
		ctx = requestcontext.WithClientID(ctx, clientID)
	}
	rec := httptest.NewRecorder()
	mw.Limit(next).ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func TestLimit_AllowedRequestPassesWithHeaders(t *testing.T) {
	checker := &fakeChecker{result: &Result{Allowed: true, Limit: 100, Remaining: 41, ResetAt: windowEnd}}
	mw := NewMiddleware(checker, discardLogger())
	next, called := okHandler()

	rec := serveAs("portal", mw, next)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *called)
	assert.Equal(t, "client:portal", checker.lastKey)
	assert.Equal(t, "100", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "41", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestLimit_BreachReturns429(t *testing.T) {
	checker := &fakeChecker{result: &Result{Allowed: false, Limit: 100, Remaining: 0, ResetAt: windowEnd}}
	recorder := &fakeAudit{}
	mw := NewMiddleware(checker, discardLogger(), WithAuditPublisher(recorder))
	next, called := okHandler()

	rec := serveAs("portal", mw, next)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, *called)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var envelope map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "rate_limited", envelope["error"])

	require.Len(t, recorder.events, 1)
	assert.Equal(t, string(audit.EventRateLimitExceeded), recorder.events[0].Action)
	assert.Equal(t, audit.CategorySecurity, recorder.events[0].Category)
	assert.Equal(t, "portal", recorder.events[0].ClientID)
}

func TestLimit_RedisErrorFailsOpen(t *testing.T) {
	checker := &fakeChecker{err: errors.New("connection refused")}
	mw := NewMiddleware(checker, discardLogger())
	next, called := okHandler()

	rec := serveAs("portal", mw, next)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *called)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestLimit_UnauthenticatedKeyedByIP(t *testing.T) {
	checker := &fakeChecker{result: &Result{Allowed: true, Limit: 100, Remaining: 99, ResetAt: windowEnd}}
	mw := NewMiddleware(checker, discardLogger())
	next, _ := okHandler()

	serveAs("", mw, next)

	assert.Contains(t, checker.lastKey, "ip:")
}

func TestLimit_DisabledSkipsChecker(t *testing.T) {
	checker := &fakeChecker{err: errors.New("must not be called")}
	mw := NewMiddleware(checker, discardLogger(), WithDisabled(true))
	next, called := okHandler()

	rec := serveAs("portal", mw, next)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *called)
	assert.Empty(t, checker.lastKey)
}
