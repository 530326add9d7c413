// Package snapfs defines the filesystem abstraction the snapshot reference
// cache observes.
//
// The cache never reads file contents and never mutates anything: it only
// lists directories and walks subtrees. [FS] captures exactly that surface so
// the same cache can run against a local filesystem (see [Local]) or an
// S3-backed snapshot layout (see the s3 subpackage).
//
// All paths are slash-separated and are passed through unmodified; the layout
// helpers in this package build the conventional snapshot-root paths.
package snapfs

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when the requested path does not exist.
//
// Callers use it to distinguish "directory vanished" (a snapshot deleted
// between listing and enumeration, or an empty working area) from a real I/O
// failure.
var ErrNotFound = errors.New("path not found")

// PathError wraps an error with the operation and path for context.
type PathError struct {
	Op   string // Operation that failed (e.g., "ListDir", "Walk")
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("snapfs: %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// Entry describes a single directory entry.
type Entry struct {
	// Name is the base name of the entry.
	Name string

	// IsDir reports whether the entry is a directory. S3-backed
	// implementations synthesize directories from key prefixes.
	IsDir bool

	// Size is the file size in bytes. Zero for directories.
	Size int64

	// ModTime is the entry's last modification time. Implementations that
	// cannot observe one (synthesized object-store prefixes) leave it zero;
	// callers must treat a zero ModTime as "unknown", never "unchanged".
	ModTime time.Time
}

// WalkFunc is called by FS.Walk once per file. path is the full path of the
// file; entry always describes a file, never a directory. Returning an error
// aborts the walk and is propagated to the caller.
type WalkFunc func(path string, entry Entry) error

// FS is the read-only filesystem view consumed by the reference cache.
//
// Thread Safety: implementations must be safe for concurrent use.
type FS interface {
	// ListDir returns the immediate children of dir.
	//
	// Returns ErrNotFound (wrapped in a PathError) if dir does not exist.
	ListDir(ctx context.Context, dir string) ([]Entry, error)

	// Walk visits every file under dir, recursively. Directories themselves
	// are not reported.
	//
	// Returns ErrNotFound if dir does not exist.
	Walk(ctx context.Context, dir string, fn WalkFunc) error

	// Stat returns the entry for a single path.
	//
	// Returns ErrNotFound if the path does not exist.
	Stat(ctx context.Context, path string) (Entry, error)
}
