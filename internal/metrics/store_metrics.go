package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Store metrics cover the persistence backends: one load or save of the
// full collection counts as a single operation.
var (
	storeOpsTotal    *prometheus.CounterVec
	storeOpDuration  *prometheus.HistogramVec
	storeRecordCount *prometheus.GaugeVec

	storeOnce sync.Once
)

func initStoreMetrics() {
	storeOnce.Do(func() {
		storeOpsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_operations_total",
				Help: "Total number of store load/save operations",
			},
			[]string{"backend", "operation", "status"},
		)

		storeOpDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "store_operation_duration_seconds",
				Help:    "Time spent loading or saving the patient collection",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend", "operation"},
		)

		storeRecordCount = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "store_patient_records",
				Help: "Number of patient records seen by the last store operation",
			},
			[]string{"backend"},
		)

		prometheus.MustRegister(storeOpsTotal, storeOpDuration, storeRecordCount)
	})
}

// RecordStoreOperation records one load or save against a backend. The
// record count is only meaningful for successful operations.
func RecordStoreOperation(backend, operation string, start time.Time, opErr error, records int) {
	if !businessMetricsEnabled() {
		return
	}
	initStoreMetrics()

	status := "success"
	if opErr != nil {
		status = "error"
	}

	storeOpsTotal.WithLabelValues(backend, operation, status).Inc()
	storeOpDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
	if opErr == nil {
		storeRecordCount.WithLabelValues(backend).Set(float64(records))
	}
}
