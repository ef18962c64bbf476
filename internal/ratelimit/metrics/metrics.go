package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the rate limiter.
type Metrics struct {
	Checks *prometheus.CounterVec
}

// New creates a Metrics instance with all rate limit metrics registered.
func New() *Metrics {
	return &Metrics{
		Checks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "patra_ratelimit_checks_total",
			Help: "Rate limit checks by outcome",
		}, []string{"outcome"}), // outcome: "allowed", "throttled", "error"
	}
}

// IncrementCheck records one limit check outcome.
func (m *Metrics) IncrementCheck(outcome string) {
	if m != nil {
		m.Checks.WithLabelValues(outcome).Inc()
	}
}
