package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"patra/internal/ratelimit/metrics"
	dErrors "patra/pkg/domain-errors"
	"patra/pkg/platform/audit"
	"patra/pkg/platform/httputil"
	"patra/pkg/platform/middleware/metadata"
	"patra/pkg/platform/privacy"
	"patra/pkg/requestcontext"
)

// Checker is the limiter interface the middleware depends on.
type Checker interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// AuditPublisher records limit breaches.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Middleware enforces the per-client limit on the routes it wraps.
type Middleware struct {
	limiter  Checker
	logger   *slog.Logger
	audit    AuditPublisher
	metrics  *metrics.Metrics
	disabled bool
}

// MiddlewareOption configures a Middleware.
type MiddlewareOption func(*Middleware)

// WithDisabled disables rate limiting entirely (limit 0 in config).
func WithDisabled(disabled bool) MiddlewareOption {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithAuditPublisher records breaches as audit events.
func WithAuditPublisher(publisher AuditPublisher) MiddlewareOption {
	return func(m *Middleware) {
		m.audit = publisher
	}
}

// WithMetrics records check outcomes.
func WithMetrics(mm *metrics.Metrics) MiddlewareOption {
	return func(m *Middleware) {
		m.metrics = mm
	}
}

// NewMiddleware creates the rate limit middleware.
func NewMiddleware(limiter Checker, logger *slog.Logger, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// Limit wraps a handler with the per-client check. Authenticated requests
// are keyed by client id; anything else falls back to the caller IP.
func (m *Middleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key, clientID := limitKey(ctx)

		result, err := m.limiter.Allow(ctx, key)
		if err != nil {
			// Redis trouble must not block determinations.
			m.metrics.IncrementCheck("error")
			m.logger.WarnContext(ctx, "rate limit check failed, allowing request",
				"error", err,
				"client_id", clientID,
			)
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, result)

		if !result.Allowed {
			m.metrics.IncrementCheck("throttled")
			m.logger.WarnContext(ctx, "rate limit exceeded",
				"client_id", clientID,
				"limit", result.Limit,
			)
			m.emitBreach(ctx, clientID)
			writeRateLimitExceeded(w, result)
			return
		}

		m.metrics.IncrementCheck("allowed")
		next.ServeHTTP(w, r)
	})
}

// limitKey picks the counting key: client id when authenticated, caller IP
// otherwise. The IP is only ever logged anonymized.
func limitKey(ctx context.Context) (key, clientID string) {
	if clientID = requestcontext.ClientID(ctx); clientID != "" {
		return "client:" + clientID, clientID
	}
	ip := metadata.GetClientIP(ctx)
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip, privacy.AnonymizeIP(ip)
}

func (m *Middleware) emitBreach(ctx context.Context, clientID string) {
	if m.audit == nil {
		return
	}
	event := audit.Event{
		Category:  audit.EventRateLimitExceeded.Category(),
		Action:    string(audit.EventRateLimitExceeded),
		ClientID:  clientID,
		RequestID: requestcontext.RequestID(ctx),
		Timestamp: requestcontext.Now(ctx),
	}
	if err := m.audit.Emit(ctx, event); err != nil {
		m.logger.WarnContext(ctx, "failed to emit rate limit audit event", "error", err)
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *Result) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *Result) {
	retryAfter := int(time.Until(result.ResetAt).Seconds()) + 1
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited,
		"Too many requests. Please try again later."))
}
