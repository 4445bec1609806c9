// Package metrics holds the prometheus collectors for the cart and checkout paths.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics counts cart mutations and persistence failures. A nil *CartMetrics is a no-op.
type CartMetrics struct {
	mutations           *prometheus.CounterVec
	persistenceFailures *prometheus.CounterVec
}

// NewCartMetrics registers the cart collectors on reg.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return nil
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations applied, by operation.",
	}, []string{"op"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persistence_failures_total",
		Help: "Cart slot reads or writes that failed and were recovered locally.",
	}, []string{"op"})
	reg.MustRegister(mutations, failures)
	return &CartMetrics{mutations: mutations, persistenceFailures: failures}
}

func (m *CartMetrics) IncMutation(op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

func (m *CartMetrics) IncPersistenceFailure(op string) {
	if m == nil {
		return
	}
	m.persistenceFailures.WithLabelValues(normalizeLabel(op)).Inc()
}

// CheckoutMetrics counts checkout submissions by outcome.
type CheckoutMetrics struct {
	submissions *prometheus.CounterVec
	duration    prometheus.Histogram
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return nil
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions, by result.",
	}, []string{"result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Time spent processing a checkout submission.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(submissions, duration)
	return &CheckoutMetrics{submissions: submissions, duration: duration}
}

func (m *CheckoutMetrics) IncResult(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *CheckoutMetrics) ObserveSeconds(seconds float64) {
	if m == nil {
		return
	}
	m.duration.Observe(seconds)
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
