// Package metrics holds the Prometheus instruments for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// is valid and records nothing, which keeps tests free of registry setup.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec
	ProbeFallbacks   *prometheus.CounterVec
	SourceLookups    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "diligence_analyses_total",
			Help: "Completed analyses by resulting risk level.",
		}, []string{"risk_level"}),
		ProbeFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "diligence_probe_fallbacks_total",
			Help: "Probes that substituted their static fallback result.",
		}, []string{"module"}),
		SourceLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "diligence_source_lookups_total",
			Help: "Outbound source fetches by outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "diligence_analysis_duration_seconds",
			Help:    "Wall time of one full analysis run.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
}

// ObserveAnalysis records one completed analysis.
func (m *Metrics) ObserveAnalysis(riskLevel string, seconds float64) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(riskLevel).Inc()
	m.AnalysisDuration.Observe(seconds)
}

// ObserveProbeFallback records a probe that fell back to its static result.
func (m *Metrics) ObserveProbeFallback(module string) {
	if m == nil {
		return
	}
	m.ProbeFallbacks.WithLabelValues(module).Inc()
}

// ObserveSourceLookup records one outbound fetch outcome. Matches the
// gateway.Observer signature via SourceObserver.
func (m *Metrics) ObserveSourceLookup(ok bool) {
	if m == nil {
		return
	}
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	m.SourceLookups.WithLabelValues(outcome).Inc()
}

// SourceObserver adapts the metrics to the gateway's observer hook.
func (m *Metrics) SourceObserver() func(sourceID string, ok bool) {
	return func(_ string, ok bool) { m.ObserveSourceLookup(ok) }
}
