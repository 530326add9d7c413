// Package metrics defines Prometheus metrics for the snapshot reference
// cache and the filesystem it observes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CacheMetrics holds metrics for cache refreshes and queries.
// It implements the refcache.MetricsRecorder interface.
type CacheMetrics struct {
	// RefreshesTotal counts refresh attempts, by result.
	RefreshesTotal *prometheus.CounterVec

	// RefreshDuration observes the duration of refresh attempts.
	RefreshDuration prometheus.Histogram

	// GenerationSnapshots tracks the snapshot count of the live generation.
	GenerationSnapshots prometheus.Gauge

	// GenerationFiles tracks the distinct referenced file-name count of the
	// live generation.
	GenerationFiles prometheus.Gauge

	// QueriesTotal counts GetUnreferencedFiles calls.
	QueriesTotal prometheus.Counter

	// CandidatesTotal counts candidate files examined across all queries.
	CandidatesTotal prometheus.Counter

	// UnreferencedTotal counts candidate files classified unreferenced.
	UnreferencedTotal prometheus.Counter

	// InProgressScansTotal counts live working-directory scans, by result.
	InProgressScansTotal *prometheus.CounterVec
}

// NewCacheMetrics creates and registers cache metrics.
// Uses promauto for automatic registration with the default registry.
func NewCacheMetrics() *CacheMetrics {
	return newCacheMetrics(promauto.With(prometheus.DefaultRegisterer))
}

// NewCacheMetricsWithRegistry creates cache metrics registered with a custom
// registry. Useful for testing to avoid conflicts with the default registry.
func NewCacheMetricsWithRegistry(reg prometheus.Registerer) *CacheMetrics {
	return newCacheMetrics(promauto.With(reg))
}

func newCacheMetrics(factory promauto.Factory) *CacheMetrics {
	return &CacheMetrics{
		RefreshesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "snapref",
				Subsystem: "cache",
				Name:      "refreshes_total",
				Help:      "Number of cache refresh attempts, by result.",
			},
			[]string{"result"},
		),
		RefreshDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "snapref",
				Subsystem: "cache",
				Name:      "refresh_duration_seconds",
				Help:      "Duration of cache refresh attempts.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		GenerationSnapshots: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "snapref",
				Subsystem: "cache",
				Name:      "generation_snapshots",
				Help:      "Number of completed snapshots in the live cache generation.",
			},
		),
		GenerationFiles: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "snapref",
				Subsystem: "cache",
				Name:      "generation_files",
				Help:      "Number of distinct referenced file names in the live cache generation.",
			},
		),
		QueriesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "snapref",
				Subsystem: "cache",
				Name:      "queries_total",
				Help:      "Number of unreferenced-file queries served.",
			},
		),
		CandidatesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "snapref",
				Subsystem: "cache",
				Name:      "candidates_total",
				Help:      "Number of candidate files examined across all queries.",
			},
		),
		UnreferencedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "snapref",
				Subsystem: "cache",
				Name:      "unreferenced_total",
				Help:      "Number of candidate files classified as unreferenced (safe to delete).",
			},
		),
		InProgressScansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "snapref",
				Subsystem: "cache",
				Name:      "inprogress_scans_total",
				Help:      "Number of live working-directory scans, by result.",
			},
			[]string{"result"},
		),
	}
}

// RecordRefresh records one refresh attempt.
func (m *CacheMetrics) RecordRefresh(durationSeconds float64, success bool) {
	m.RefreshesTotal.WithLabelValues(resultLabel(success)).Inc()
	m.RefreshDuration.Observe(durationSeconds)
}

// RecordGeneration records the size of the generation just installed.
func (m *CacheMetrics) RecordGeneration(snapshots, files int) {
	m.GenerationSnapshots.Set(float64(snapshots))
	m.GenerationFiles.Set(float64(files))
}

// RecordQuery records one GetUnreferencedFiles call.
func (m *CacheMetrics) RecordQuery(candidates, unreferenced int) {
	m.QueriesTotal.Inc()
	m.CandidatesTotal.Add(float64(candidates))
	m.UnreferencedTotal.Add(float64(unreferenced))
}

// RecordInProgressScan records one live working-directory scan.
func (m *CacheMetrics) RecordInProgressScan(durationSeconds float64, success bool) {
	m.InProgressScansTotal.WithLabelValues(resultLabel(success)).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
