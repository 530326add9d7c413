package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SnapFSMetrics holds metrics for snapshot filesystem operations.
// It implements the snapfs.MetricsRecorder interface.
type SnapFSMetrics struct {
	// OperationsTotal counts filesystem operations, by op and result.
	OperationsTotal *prometheus.CounterVec

	// OperationDuration observes operation durations, by op.
	OperationDuration *prometheus.HistogramVec
}

// NewSnapFSMetrics creates and registers filesystem metrics with the default
// registry.
func NewSnapFSMetrics() *SnapFSMetrics {
	return newSnapFSMetrics(promauto.With(prometheus.DefaultRegisterer))
}

// NewSnapFSMetricsWithRegistry creates filesystem metrics registered with a
// custom registry.
func NewSnapFSMetricsWithRegistry(reg prometheus.Registerer) *SnapFSMetrics {
	return newSnapFSMetrics(promauto.With(reg))
}

func newSnapFSMetrics(factory promauto.Factory) *SnapFSMetrics {
	return &SnapFSMetrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "snapref",
				Subsystem: "snapfs",
				Name:      "operations_total",
				Help:      "Number of snapshot filesystem operations, by op and result.",
			},
			[]string{"op", "result"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "snapref",
				Subsystem: "snapfs",
				Name:      "operation_duration_seconds",
				Help:      "Duration of snapshot filesystem operations, by op.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
}

func (m *SnapFSMetrics) record(op string, durationSeconds float64, success bool) {
	m.OperationsTotal.WithLabelValues(op, resultLabel(success)).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(durationSeconds)
}

// RecordListDir records one ListDir operation.
func (m *SnapFSMetrics) RecordListDir(durationSeconds float64, success bool) {
	m.record("list_dir", durationSeconds, success)
}

// RecordWalk records one Walk operation.
func (m *SnapFSMetrics) RecordWalk(durationSeconds float64, success bool) {
	m.record("walk", durationSeconds, success)
}

// RecordStat records one Stat operation.
func (m *SnapFSMetrics) RecordStat(durationSeconds float64, success bool) {
	m.record("stat", durationSeconds, success)
}
