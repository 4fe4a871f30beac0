package metrics

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Business metrics are registered lazily the first time one is recorded,
// and only if ENABLE_BUSINESS_METRICS is set.
var (
	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	httpActiveConnections prometheus.Gauge
	patientOpsTotal       *prometheus.CounterVec

	businessOnce sync.Once
)

func businessMetricsEnabled() bool {
	return os.Getenv("ENABLE_BUSINESS_METRICS") == "true"
}

func initBusinessMetrics() {
	businessOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		)

		httpRequestDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		)

		httpActiveConnections = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Number of active HTTP connections",
			},
		)

		patientOpsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "patient_operations_total",
				Help: "Total number of patient record operations",
			},
			// operation: create, replace, update, delete, get, list, filter, sort
			// result: success, not_found, conflict, validation_failed,
			//         invalid_argument, invalid_json, storage_error
			[]string{"operation", "result"},
		)

		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			httpActiveConnections,
			patientOpsTotal,
		)
	})
}

// RecordHTTPRequest records counter and duration metrics for one request.
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if !businessMetricsEnabled() {
		return
	}
	initBusinessMetrics()

	status := strconv.Itoa(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordPatientOperation records the outcome of a patient record operation.
func RecordPatientOperation(operation, result string) {
	if !businessMetricsEnabled() {
		return
	}
	initBusinessMetrics()

	patientOpsTotal.WithLabelValues(operation, result).Inc()
}

// IncActiveConnections increments the active connection gauge.
func IncActiveConnections() {
	if !businessMetricsEnabled() {
		return
	}
	initBusinessMetrics()
	httpActiveConnections.Inc()
}

// DecActiveConnections decrements the active connection gauge.
func DecActiveConnections() {
	if !businessMetricsEnabled() {
		return
	}
	initBusinessMetrics()
	httpActiveConnections.Dec()
}
