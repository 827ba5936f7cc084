// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "archivist"

// Outcomes of a title resolution.
const (
	OutcomeResolved = "resolved"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
)

// Metrics owns a private registry so tests can build as many as they need.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Imports             *prometheus.CounterVec
	RecordsWritten      *prometheus.CounterVec
	RecordWriteFailures *prometheus.CounterVec
	TitleResolutions    *prometheus.CounterVec
	EnrichBatchDuration prometheus.Histogram
	HTTPRequests        *prometheus.CounterVec
}

// New creates and registers every collector.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		Imports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "imports_total",
				Help:      "Archive imports by result",
			},
			[]string{"result"},
		),
		RecordsWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_written_total",
				Help:      "Records written to the record store",
			},
			[]string{"collection"},
		),
		RecordWriteFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "record_write_failures_total",
				Help:      "Record writes that failed and were skipped",
			},
			[]string{"collection"},
		),
		TitleResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "title_resolutions_total",
				Help:      "Title lookups by outcome",
			},
			[]string{"outcome"},
		),
		EnrichBatchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "enrich_batch_duration_seconds",
				Help:      "Time spent enriching the links of one message",
				Buckets:   prometheus.DefBuckets,
			},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
	}

	registry.MustRegister(
		m.Imports,
		m.RecordsWritten,
		m.RecordWriteFailures,
		m.TitleResolutions,
		m.EnrichBatchDuration,
		m.HTTPRequests,
	)

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ImportFinished(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.Imports.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordWritten(collection string) {
	if m == nil {
		return
	}
	m.RecordsWritten.WithLabelValues(collection).Inc()
}

func (m *Metrics) RecordWriteFailed(collection string) {
	if m == nil {
		return
	}
	m.RecordWriteFailures.WithLabelValues(collection).Inc()
}

func (m *Metrics) TitleResolved(outcome string) {
	if m == nil {
		return
	}
	m.TitleResolutions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) EnrichBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.EnrichBatchDuration.Observe(d.Seconds())
}

func (m *Metrics) HTTPRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
