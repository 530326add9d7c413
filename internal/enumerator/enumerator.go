// Package enumerator computes which file names a completed snapshot
// references.
//
// The snapshot-internal layout is opaque to the cache itself; only
// enumerators interpret it. The conventional layout is
//
//	<snapshot>/<region>/<family>/<datafile>
//	<snapshot>/.logs/<server>/<logfile>
//
// Enumerators are injected strategies: the cache holds exactly one and asks
// it once per snapshot per refresh cycle. A snapshot directory that does not
// exist is reported through snapfs.ErrNotFound so the caller can treat it as
// a concurrently deleted snapshot rather than a failure.
package enumerator

import (
	"context"
	"errors"

	"github.com/snapref-io/snapref/internal/snapfs"
)

// Enumerator computes the set of file names a snapshot directory references.
type Enumerator interface {
	// FilesUnderSnapshot returns the base names of every file the snapshot
	// at snapshotDir references.
	FilesUnderSnapshot(ctx context.Context, fs snapfs.FS, snapshotDir string) (map[string]struct{}, error)
}

// Func adapts an ordinary function to the Enumerator interface.
type Func func(ctx context.Context, fs snapfs.FS, snapshotDir string) (map[string]struct{}, error)

// FilesUnderSnapshot calls f.
func (f Func) FilesUnderSnapshot(ctx context.Context, fs snapfs.FS, snapshotDir string) (map[string]struct{}, error) {
	return f(ctx, fs, snapshotDir)
}

// AllFiles returns an enumerator that references every file under the
// snapshot directory, log and data files alike.
func AllFiles() Enumerator {
	return Func(func(ctx context.Context, fs snapfs.FS, snapshotDir string) (map[string]struct{}, error) {
		return collect(ctx, fs, snapshotDir, false)
	})
}

// LogFiles returns an enumerator that references only the snapshot's log
// files (the subtree under the snapshot's log directory). Data files are
// invisible to it.
func LogFiles() Enumerator {
	return Func(func(ctx context.Context, fs snapfs.FS, snapshotDir string) (map[string]struct{}, error) {
		// The snapshot itself must exist for a missing log dir to mean
		// "no logs" rather than "snapshot gone".
		if _, err := fs.Stat(ctx, snapshotDir); err != nil {
			return nil, err
		}
		files, err := collect(ctx, fs, snapfs.SnapshotLogDir(snapshotDir), true)
		if err != nil {
			return nil, err
		}
		return files, nil
	})
}

// collect walks dir and gathers base names of all files. When
// missingIsEmpty is set, a missing dir yields an empty set instead of
// snapfs.ErrNotFound.
func collect(ctx context.Context, fs snapfs.FS, dir string, missingIsEmpty bool) (map[string]struct{}, error) {
	files := make(map[string]struct{})
	err := fs.Walk(ctx, dir, func(_ string, entry snapfs.Entry) error {
		files[entry.Name] = struct{}{}
		return nil
	})
	if err != nil {
		if missingIsEmpty && errors.Is(err, snapfs.ErrNotFound) {
			return files, nil
		}
		return nil, err
	}
	return files, nil
}
