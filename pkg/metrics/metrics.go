// Package metrics holds the Prometheus collectors of the interactions gateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the gateway collectors. A nil *Metrics records nothing.
type Metrics struct {
	InteractionsTotal *prometheus.CounterVec
	DispatchDuration  *prometheus.HistogramVec
	SignatureFailures prometheus.Counter
}

// New registers the gateway collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		InteractionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "interactions_total",
			Help: "Total number of dispatched interactions by kind and outcome",
		}, []string{"kind", "outcome"}),
		DispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "interaction_dispatch_duration_seconds",
			Help:    "Time spent dispatching an interaction, handlers included",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"kind"}),
		SignatureFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "signature_failures_total",
			Help: "Total number of requests rejected by signature verification",
		}),
	}
}

// ObserveDispatch records one dispatched interaction.
func (m *Metrics) ObserveDispatch(kind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.InteractionsTotal.WithLabelValues(kind, outcome).Inc()
	m.DispatchDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// SignatureFailure records a rejected signature.
func (m *Metrics) SignatureFailure() {
	if m == nil {
		return
	}
	m.SignatureFailures.Inc()
}
