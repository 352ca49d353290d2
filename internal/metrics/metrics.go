// Package metrics defines the Prometheus collectors of textsuite and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Analysis kinds.
const (
	KindTopics     = "topics"
	KindSentiment  = "sentiment"
	KindParaphrase = "paraphrase"
	KindChat       = "chat"
	KindExtract    = "extract"
)

// Metrics holds all Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	AnalysesTotal        *prometheus.CounterVec
	AnalysisDuration     *prometheus.HistogramVec
	TopicCoherence       prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	EventsPublished      *prometheus.CounterVec
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	registry *prometheus.Registry
}

// New creates the collectors on a private registry that also carries the
// Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textsuite_analyses_total",
				Help: "Total analyses by kind and status.",
			},
			[]string{"kind", "status"},
		),
		AnalysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "textsuite_analysis_duration_seconds",
				Help:    "Analysis latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"kind"},
		),
		TopicCoherence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "textsuite_topics_coherence",
				Help:    "Coherence score of finished topic analyses.",
				Buckets: prometheus.LinearBuckets(-1, 0.2, 11),
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "textsuite_cache_hits_total",
				Help: "Topic analyses served from the result cache.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "textsuite_cache_misses_total",
				Help: "Topic analyses not found in the result cache.",
			},
		),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textsuite_events_published_total",
				Help: "Analysis events by publish status.",
			},
			[]string{"status"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.TopicCoherence,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.EventsPublished,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
	)
	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAnalysis counts one analysis of kind that started at start.
func (m *Metrics) ObserveAnalysis(kind string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.AnalysesTotal.WithLabelValues(kind, status).Inc()
	m.AnalysisDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// ObserveCoherence records the coherence of a finished topic analysis.
func (m *Metrics) ObserveCoherence(score float64) {
	if m == nil {
		return
	}
	m.TopicCoherence.Observe(score)
}

// ObserveCache counts a cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.Inc()
	} else {
		m.CacheMissesTotal.Inc()
	}
}

// ObserveEvent counts an event publish attempt.
func (m *Metrics) ObserveEvent(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.EventsPublished.WithLabelValues("error").Inc()
		return
	}
	m.EventsPublished.WithLabelValues("ok").Inc()
}
