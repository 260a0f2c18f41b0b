// Package metrics holds the Prometheus collectors for the record engine and
// the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Engine operation labels
const (
	OpCreate  = "create"
	OpEdit    = "edit"
	OpGet     = "get"
	OpList    = "list"
	OpFind    = "find"
	OpRestore = "restore"
	OpOpen    = "open"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Engine operation metrics
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	recordsTotal      prometheus.Gauge
	dataSizeBytes     prometheus.Gauge
	restoreSkipped    prometheus.Counter

	// API key authentication metrics
	authRequestsTotal *prometheus.CounterVec
}

// New creates all metrics and registers them on reg. A nil registerer
// creates unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filecabinet_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filecabinet_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "filecabinet_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filecabinet_operations_total",
				Help: "Total number of record engine operations",
			},
			[]string{"operation", "status"},
		),

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filecabinet_operation_duration_seconds",
				Help:    "Record engine operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		recordsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "filecabinet_records_total",
				Help: "Total number of records in the data file",
			},
		),

		dataSizeBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "filecabinet_data_size_bytes",
				Help: "Size of the data file in bytes",
			},
		),

		restoreSkipped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "filecabinet_restore_skipped_total",
				Help: "Total number of imported records skipped by validation",
			},
		),

		authRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filecabinet_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordOperation records an engine operation
func (m *Metrics) RecordOperation(operation string, success bool, duration time.Duration) {
	m.operationsTotal.WithLabelValues(operation, status(success)).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateStoreStats sets the record count and data file size
func (m *Metrics) UpdateStoreStats(records int, dataSize int64) {
	m.recordsTotal.Set(float64(records))
	m.dataSizeBytes.Set(float64(dataSize))
}

// RecordRestoreSkipped counts records skipped during a restore
func (m *Metrics) RecordRestoreSkipped(n int) {
	m.restoreSkipped.Add(float64(n))
}

// RecordAuthRequest records an authentication request
func (m *Metrics) RecordAuthRequest(success bool) {
	m.authRequestsTotal.WithLabelValues(status(success)).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		// Capture the status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

func status(success bool) string {
	if success {
		return StatusSuccess
	}
	return StatusError
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
