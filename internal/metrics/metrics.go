package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "telephone"

// Metrics implements walker.Recorder with Prometheus collectors. Each
// instance has its own registry.
type Metrics struct {
	registry         *prometheus.Registry
	passes           *prometheus.CounterVec
	failures         *prometheus.CounterVec
	backTranslations *prometheus.CounterVec
	inFlight         prometheus.Gauge
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Completed translation passes by target language.",
		}, []string{"lang"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pass_failures_total",
			Help:      "Failed translation attempts by target language.",
		}, []string{"lang"}),
		backTranslations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "back_translations_total",
			Help:      "Back-translations into the source language by result.",
		}, []string{"result"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "translations_in_flight",
			Help:      "Translator calls currently running.",
		}),
	}
	m.registry.MustRegister(m.passes, m.failures, m.backTranslations, m.inFlight)
	return m
}

// PassCompleted implements walker.Recorder
func (m *Metrics) PassCompleted(lang string) {
	m.passes.WithLabelValues(lang).Inc()
}

// PassFailed implements walker.Recorder
func (m *Metrics) PassFailed(lang string) {
	m.failures.WithLabelValues(lang).Inc()
}

// BackTranslated implements walker.Recorder
func (m *Metrics) BackTranslated(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.backTranslations.WithLabelValues(result).Inc()
}

// InFlight implements walker.Recorder
func (m *Metrics) InFlight(delta int) {
	m.inFlight.Add(float64(delta))
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
