// Package metrics instruments the query layer with Prometheus
// collectors. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Query outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeTransport   = "transport_error"
	OutcomeQueryError  = "query_error"
	OutcomeKeyMismatch = "key_mismatch"
	OutcomeProofError  = "proof_error"
)

// Metrics holds the collectors for one client.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	searches *prometheus.CounterVec
	results  prometheus.Histogram
}

// New creates the collectors and registers them with reg. A nil reg
// skips registration, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bquery",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total node queries segmented by mode and outcome.",
		}, []string{"mode", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bquery",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of node queries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bquery",
			Subsystem: "search",
			Name:      "queries_total",
			Help:      "Transaction searches segmented by query variant and outcome.",
		}, []string{"variant", "outcome"}),
		results: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bquery",
			Subsystem: "search",
			Name:      "results",
			Help:      "Number of transactions returned per search after filtering.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.latency, m.searches, m.results)
	}
	return m
}

// ObserveQuery records one gateway call. mode is "verified" or
// "unverified".
func (m *Metrics) ObserveQuery(mode, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(mode, outcome).Inc()
	m.latency.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// ObserveSearch records one logical search.
func (m *Metrics) ObserveSearch(variant string, err error, results int) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = "error"
	}
	m.searches.WithLabelValues(variant, outcome).Inc()
	if err == nil {
		m.results.Observe(float64(results))
	}
}
