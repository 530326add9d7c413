package snapfs

import (
	"context"
	"time"
)

// MetricsRecorder is the interface for recording filesystem operation metrics.
// This keeps the snapfs package decoupled from the metrics package.
type MetricsRecorder interface {
	RecordListDir(durationSeconds float64, success bool)
	RecordWalk(durationSeconds float64, success bool)
	RecordStat(durationSeconds float64, success bool)
}

// Instrumented wraps an FS and records metrics for each operation.
type Instrumented struct {
	fs      FS
	metrics MetricsRecorder
}

// NewInstrumented creates an instrumented wrapper around an FS.
// If metrics is nil, operations pass through directly.
func NewInstrumented(fs FS, metrics MetricsRecorder) *Instrumented {
	return &Instrumented{
		fs:      fs,
		metrics: metrics,
	}
}

// ListDir returns the immediate children of dir.
func (i *Instrumented) ListDir(ctx context.Context, dir string) ([]Entry, error) {
	start := time.Now()
	entries, err := i.fs.ListDir(ctx, dir)
	if i.metrics != nil {
		i.metrics.RecordListDir(time.Since(start).Seconds(), err == nil)
	}
	return entries, err
}

// Walk visits every file under dir.
func (i *Instrumented) Walk(ctx context.Context, dir string, fn WalkFunc) error {
	start := time.Now()
	err := i.fs.Walk(ctx, dir, fn)
	if i.metrics != nil {
		i.metrics.RecordWalk(time.Since(start).Seconds(), err == nil)
	}
	return err
}

// Stat returns the entry for a single path.
func (i *Instrumented) Stat(ctx context.Context, path string) (Entry, error) {
	start := time.Now()
	entry, err := i.fs.Stat(ctx, path)
	if i.metrics != nil {
		i.metrics.RecordStat(time.Since(start).Seconds(), err == nil)
	}
	return entry, err
}

var _ FS = (*Instrumented)(nil)
