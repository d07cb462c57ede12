package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lifecycle operations counted by RecordLifecycle.
const (
	OpAdded         = "added"
	OpStatusChanged = "status_changed"
	OpArchived      = "archived"
	OpRemoved       = "removed"
)

// Metrics exposes prometheus counters for store health, record lifecycle and
// HTTP traffic. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry        *prometheus.Registry
	lifecycle       *prometheus.CounterVec
	corruptRows     *prometheus.CounterVec
	schemaRepairs   *prometheus.CounterVec
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec
}

// NewMetrics registers the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lifecycle: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_records_total",
			Help: "Record lifecycle operations by kind and operation",
		}, []string{"kind", "op"}),
		corruptRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_corrupt_rows_dropped_total",
			Help: "Rows dropped on read because their width did not match the header",
		}, []string{"file"}),
		schemaRepairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_schema_repairs_total",
			Help: "Store files recreated because their header was missing or wrong",
		}, []string{"file"}),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tracker_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_http_errors_total",
			Help: "HTTP errors by route, method and error code",
		}, []string{"path", "method", "code"}),
	}
	m.registry.MustRegister(
		m.lifecycle,
		m.corruptRows,
		m.schemaRepairs,
		m.requestCount,
		m.requestDuration,
		m.errorCount,
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordLifecycle counts an engine operation.
func (m *Metrics) RecordLifecycle(kind, op string) {
	if m == nil {
		return
	}
	m.lifecycle.WithLabelValues(kind, op).Inc()
}

// CorruptRowDropped counts a row discarded on read.
func (m *Metrics) CorruptRowDropped(path string) {
	if m == nil {
		return
	}
	m.corruptRows.WithLabelValues(path).Inc()
}

// SchemaRepaired counts a destructive header repair.
func (m *Metrics) SchemaRepaired(path string) {
	if m == nil {
		return
	}
	m.schemaRepairs.WithLabelValues(path).Inc()
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}
