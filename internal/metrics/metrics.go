// Package metrics exposes prometheus instruments for pricing and access
// resolution. A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "concierge"

// Recorder groups the service's collectors.
type Recorder struct {
	resolutions      *prometheus.CounterVec
	evidenceFailures *prometheus.CounterVec
	onchainDuration  prometheus.Histogram
	estimates        *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_resolutions_total",
			Help:      "Collectible access resolutions by deciding source and outcome.",
		}, []string{"source", "eligible"}),
		evidenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_evidence_failures_total",
			Help:      "Evidence lookups that failed and were treated as no evidence.",
		}, []string{"source"}),
		onchainDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "onchain_balance_query_seconds",
			Help:      "Latency of ERC-721 balanceOf calls, including failures.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		}),
		estimates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_estimates_total",
			Help:      "Price estimates computed, by resolved tier.",
		}, []string{"tier"}),
	}
	reg.MustRegister(r.resolutions, r.evidenceFailures, r.onchainDuration, r.estimates)
	return r
}

// NewRegistry returns a registry with the Go runtime and process collectors
// plus a Recorder registered on it.
func NewRegistry() (*prometheus.Registry, *Recorder) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, NewRecorder(reg)
}

// Handler serves the registry in the prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Resolution counts one access resolution.
func (r *Recorder) Resolution(source string, eligible bool) {
	if r == nil {
		return
	}
	r.resolutions.WithLabelValues(source, strconv.FormatBool(eligible)).Inc()
}

// EvidenceFailure counts a swallowed lookup failure for source.
func (r *Recorder) EvidenceFailure(source string) {
	if r == nil {
		return
	}
	r.evidenceFailures.WithLabelValues(source).Inc()
}

// OnchainQuery observes the duration of one balanceOf call.
func (r *Recorder) OnchainQuery(d time.Duration) {
	if r == nil {
		return
	}
	r.onchainDuration.Observe(d.Seconds())
}

// Estimate counts one price estimate.
func (r *Recorder) Estimate(tierID string) {
	if r == nil {
		return
	}
	r.estimates.WithLabelValues(tierID).Inc()
}
