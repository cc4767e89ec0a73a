// Package metrics holds the Prometheus collectors of the service. Every
// Metrics value owns a private registry so tests and multiple servers in one
// process never collide.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zancompute/zanconfig/internal/errors"
)

const namespace = "zanconfig"

// Outcome labels for store operations.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeNotFound   = "not_found"
	OutcomeStore      = "store"
)

// Metrics collects store, schema, freshness and HTTP metrics.
type Metrics struct {
	registry *prometheus.Registry

	storeOps      *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec

	schemaFailures *prometheus.CounterVec

	freshnessReports  *prometheus.CounterVec
	freshnessFailures *prometheus.CounterVec
	freshnessDuration prometheus.Histogram
	freshnessRows     prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates and registers the collectors. Runtime collectors are included
// unless withRuntime is false.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "operations_total",
				Help:      "Client configuration operations by outcome.",
			},
			[]string{"operation", "outcome"},
		),
		storeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "operation_duration_seconds",
				Help:      "Duration of client configuration operations.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"operation"},
		),
		schemaFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schema_evolution_failures_total",
				Help:      "Schema evolution statements that failed at startup.",
			},
			[]string{"step"},
		),
		freshnessReports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "freshness",
				Name:      "reports_total",
				Help:      "Freshness reports served, by cache source.",
			},
			[]string{"source"},
		),
		freshnessFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "freshness_failures_total",
				Help:      "Freshness reports that degraded to an empty result.",
			},
			[]string{"stage"},
		),
		freshnessDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "freshness",
				Name:      "query_duration_seconds",
				Help:      "Duration of cross-schema freshness queries.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
			},
		),
		freshnessRows: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "freshness",
				Name:      "last_report_rows",
				Help:      "Number of rows in the most recent freshness query.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		m.storeOps,
		m.storeDuration,
		m.schemaFailures,
		m.freshnessReports,
		m.freshnessFailures,
		m.freshnessDuration,
		m.freshnessRows,
		m.httpRequests,
		m.httpDuration,
	)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
	}
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveStoreOperation records one client configuration operation. The
// outcome label is derived from the error category.
func (m *Metrics) ObserveStoreOperation(operation string, err error, d time.Duration) {
	m.storeOps.WithLabelValues(operation, Outcome(err)).Inc()
	m.storeDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// SchemaStepFailed counts a failed schema evolution statement.
func (m *Metrics) SchemaStepFailed(step string) {
	m.schemaFailures.WithLabelValues(step).Inc()
}

// FreshnessQueried records a completed freshness query.
func (m *Metrics) FreshnessQueried(rows int, d time.Duration) {
	m.freshnessDuration.Observe(d.Seconds())
	m.freshnessRows.Set(float64(rows))
}

// FreshnessServed counts a report returned to a caller, from the cache or
// from the database.
func (m *Metrics) FreshnessServed(cached bool) {
	source := "database"
	if cached {
		source = "cache"
	}
	m.freshnessReports.WithLabelValues(source).Inc()
}

// FreshnessFailed counts a report that degraded to an empty result.
func (m *Metrics) FreshnessFailed(stage string) {
	m.freshnessFailures.WithLabelValues(stage).Inc()
}

// ObserveHTTPRequest records one handled request. route is the registered
// path pattern, never the raw URL.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Outcome maps an error to its outcome label.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	switch errors.CategoryOf(err) {
	case errors.CategoryValidation:
		return OutcomeValidation
	case errors.CategoryNotFound:
		return OutcomeNotFound
	default:
		return OutcomeStore
	}
}
