package snapfs

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

// Local implements FS over an afero filesystem. Production callers pass
// afero.NewOsFs(); tests typically pass afero.NewMemMapFs().
type Local struct {
	fs afero.Fs
}

// NewLocal creates a Local backed by the given afero filesystem.
func NewLocal(afs afero.Fs) *Local {
	return &Local{fs: afs}
}

// NewOSLocal creates a Local backed by the host filesystem.
func NewOSLocal() *Local {
	return NewLocal(afero.NewOsFs())
}

// ListDir returns the immediate children of dir.
func (l *Local) ListDir(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return nil, &PathError{Op: "ListDir", Path: dir, Err: mapOSError(err)}
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, entryFromInfo(info))
	}
	return entries, nil
}

// Walk visits every file under dir.
func (l *Local) Walk(ctx context.Context, dir string, fn WalkFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// afero.Walk reports the root itself; a missing root surfaces as the
	// walk function being called with an error.
	err := afero.Walk(l.fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return mapOSError(err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			return nil
		}
		return fn(p, entryFromInfo(info))
	})
	if err != nil {
		return &PathError{Op: "Walk", Path: dir, Err: err}
	}
	return nil
}

// Stat returns the entry for a single path.
func (l *Local) Stat(ctx context.Context, path string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	info, err := l.fs.Stat(path)
	if err != nil {
		return Entry{}, &PathError{Op: "Stat", Path: path, Err: mapOSError(err)}
	}
	return entryFromInfo(info), nil
}

func entryFromInfo(info os.FileInfo) Entry {
	e := Entry{
		Name:    info.Name(),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}
	if !info.IsDir() {
		e.Size = info.Size()
	}
	return e
}

func mapOSError(err error) error {
	if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

var _ FS = (*Local)(nil)
