package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for API client authentication.
type Metrics struct {
	TokensIssued prometheus.Counter
	AuthFailures *prometheus.CounterVec
}

// New creates a Metrics instance with all client metrics registered.
func New() *Metrics {
	return &Metrics{
		TokensIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patra_tokens_issued_total",
			Help: "Total access tokens issued to API clients",
		}),

		AuthFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "patra_auth_failures_total",
			Help: "Failed token requests by reason",
		}, []string{"reason"}), // reason: "unknown_client", "bad_secret", "inactive", "scope"
	}
}

// IncrementTokensIssued records one issued token.
func (m *Metrics) IncrementTokensIssued() {
	if m != nil {
		m.TokensIssued.Inc()
	}
}

// IncrementAuthFailure records one failed token request.
func (m *Metrics) IncrementAuthFailure(reason string) {
	if m != nil {
		m.AuthFailures.WithLabelValues(reason).Inc()
	}
}
