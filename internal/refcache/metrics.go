package refcache

// MetricsRecorder is the interface for recording cache activity metrics.
// This keeps the refcache package decoupled from the metrics package.
type MetricsRecorder interface {
	// RecordRefresh records one refresh attempt, successful or not.
	RecordRefresh(durationSeconds float64, success bool)

	// RecordGeneration records the size of the generation just installed.
	RecordGeneration(snapshots, files int)

	// RecordQuery records one GetUnreferencedFiles call.
	RecordQuery(candidates, unreferenced int)

	// RecordInProgressScan records one live working-directory scan.
	RecordInProgressScan(durationSeconds float64, success bool)
}
