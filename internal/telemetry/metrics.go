package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tournevent/mondialrelay/pkg/mondialrelay"
)

// Metrics holds the Prometheus metrics of the carrier client.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	CarrierErrors     *prometheus.CounterVec
}

// NewMetrics creates and registers Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		OperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mondialrelay_operations_total",
				Help: "Total carrier operations by operation, gateway and status",
			},
			[]string{"operation", "gateway", "status"},
		),
		OperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mondialrelay_operation_duration_seconds",
				Help:    "Carrier operation duration in seconds by operation and gateway",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "gateway"},
		),
		CarrierErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mondialrelay_errors_total",
				Help: "Total carrier errors by category",
			},
			[]string{"operation", "category"},
		),
	}
}

// RecordOperation records one gateway call with its outcome.
func (m *Metrics) RecordOperation(operation, gateway string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
		m.CarrierErrors.WithLabelValues(operation, string(mondialrelay.ErrorCategory(err))).Inc()
	}
	m.OperationsTotal.WithLabelValues(operation, gateway, status).Inc()
	m.OperationDuration.WithLabelValues(operation, gateway).Observe(duration.Seconds())
}
