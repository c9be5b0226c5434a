// Package prometheus registers and records the platform's operational
// metrics.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var httpDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
var stageDurationBuckets = []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 120}

// Metrics holds every metric the platform records.  One instance per
// process, registered against a single registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	pipelineStageDuration *prometheus.HistogramVec
	comparisonsTotal      *prometheus.CounterVec

	oracleCallsTotal *prometheus.CounterVec
	scorerCallsTotal *prometheus.CounterVec

	cacheHitsTotal   prometheus.Counter
	cacheMissesTotal prometheus.Counter

	documentsIngestedTotal *prometheus.CounterVec
}

// New builds and registers all platform metrics on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policylens_http_requests_total",
			Help: "HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "policylens_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "route"}),
		pipelineStageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "policylens_pipeline_stage_duration_seconds",
			Help:    "Comparison pipeline stage latency.",
			Buckets: stageDurationBuckets,
		}, []string{"stage"}),
		comparisonsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policylens_comparisons_total",
			Help: "Comparisons by terminal status.",
		}, []string{"status"}),
		oracleCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policylens_oracle_calls_total",
			Help: "Text oracle calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		scorerCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policylens_scorer_calls_total",
			Help: "Similarity scorer calls by outcome.",
		}, []string{"outcome"}),
		cacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "policylens_report_cache_hits_total",
			Help: "Report cache hits.",
		}),
		cacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "policylens_report_cache_misses_total",
			Help: "Report cache misses.",
		}),
		documentsIngestedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policylens_documents_ingested_total",
			Help: "Documents ingested by type.",
		}, []string{"doc_type"}),
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.pipelineStageDuration,
		m.comparisonsTotal,
		m.oracleCallsTotal,
		m.scorerCallsTotal,
		m.cacheHitsTotal,
		m.cacheMissesTotal,
		m.documentsIngestedTotal,
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveStage records one pipeline stage execution.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.pipelineStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordComparison records a comparison reaching a terminal status.
func (m *Metrics) RecordComparison(status string) {
	m.comparisonsTotal.WithLabelValues(status).Inc()
}

// RecordOracleCall records one text oracle invocation.
func (m *Metrics) RecordOracleCall(operation string, err error) {
	m.oracleCallsTotal.WithLabelValues(operation, outcome(err)).Inc()
}

// RecordScorerCall records one similarity scorer invocation.
func (m *Metrics) RecordScorerCall(err error) {
	m.scorerCallsTotal.WithLabelValues(outcome(err)).Inc()
}

// RecordCacheAccess records a report cache lookup.
func (m *Metrics) RecordCacheAccess(hit bool) {
	if hit {
		m.cacheHitsTotal.Inc()
		return
	}
	m.cacheMissesTotal.Inc()
}

// RecordDocumentIngested records a stored upload.
func (m *Metrics) RecordDocumentIngested(docType string) {
	m.documentsIngestedTotal.WithLabelValues(docType).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
