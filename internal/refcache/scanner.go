package refcache

import (
	"context"
	"errors"
	"fmt"

	"github.com/snapref-io/snapref/internal/snapfs"
)

// ProgressScanner reports the files currently staged under the working
// directory of in-progress snapshots.
//
// Implementations must re-read the filesystem on every call. In-progress
// snapshots change too rapidly for any cached view to be safe: the files
// being staged may be the very candidates the cleaner is asking about.
type ProgressScanner interface {
	// SnapshotsInProgress returns the base names of every file under the
	// working directory tree.
	SnapshotsInProgress(ctx context.Context) (map[string]struct{}, error)
}

// workingDirScanner is the default ProgressScanner: a stateless recursive
// walk of the working directory. It applies no enumerator logic — all files
// under an in-progress snapshot are treated as referenced, whatever their
// type, because a snapshot being built may stage any file before it is
// finalized.
type workingDirScanner struct {
	fs  snapfs.FS
	dir string
}

func newWorkingDirScanner(fs snapfs.FS, dir string) *workingDirScanner {
	return &workingDirScanner{fs: fs, dir: dir}
}

func (s *workingDirScanner) SnapshotsInProgress(ctx context.Context) (map[string]struct{}, error) {
	names := make(map[string]struct{})
	err := s.fs.Walk(ctx, s.dir, func(_ string, entry snapfs.Entry) error {
		names[entry.Name] = struct{}{}
		return nil
	})
	if err != nil {
		// No working directory means no snapshots are being built.
		if errors.Is(err, snapfs.ErrNotFound) {
			return names, nil
		}
		return nil, fmt.Errorf("scan working directory %q: %w", s.dir, err)
	}
	return names, nil
}
