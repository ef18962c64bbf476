package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the eligibility module.
type Metrics struct {
	// Determination outcomes by scheme and result
	CheckOutcome *prometheus.CounterVec

	// Full check latency, cache hits included
	CheckLatency prometheus.Histogram

	// Decision cache effectiveness
	CacheResult *prometheus.CounterVec

	// Exclusion rules triggering, by rule name
	ExclusionHits *prometheus.CounterVec
}

// New creates a Metrics instance with all eligibility metrics registered.
func New() *Metrics {
	return &Metrics{
		CheckOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "patra_eligibility_checks_total",
			Help: "Total eligibility determinations by scheme and outcome",
		}, []string{"scheme", "outcome"}), // outcome: "eligible", "ineligible"

		CheckLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "patra_eligibility_check_duration_seconds",
			Help:    "Duration of a full eligibility check",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		CacheResult: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "patra_eligibility_cache_total",
			Help: "Decision cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "error"

		ExclusionHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "patra_eligibility_exclusions_total",
			Help: "Exclusion rules triggered, by scheme and rule",
		}, []string{"scheme", "rule"}),
	}
}

// IncrementOutcome records a determination outcome.
func (m *Metrics) IncrementOutcome(scheme, outcome string) {
	if m != nil {
		m.CheckOutcome.WithLabelValues(scheme, outcome).Inc()
	}
}

// ObserveCheckLatency records the duration of one check.
func (m *Metrics) ObserveCheckLatency(d time.Duration) {
	if m != nil {
		m.CheckLatency.Observe(d.Seconds())
	}
}

// IncrementCache records a cache lookup result.
func (m *Metrics) IncrementCache(result string) {
	if m != nil {
		m.CacheResult.WithLabelValues(result).Inc()
	}
}

// IncrementExclusion records one triggered exclusion rule.
func (m *Metrics) IncrementExclusion(scheme, rule string) {
	if m != nil {
		m.ExclusionHits.WithLabelValues(scheme, rule).Inc()
	}
}
