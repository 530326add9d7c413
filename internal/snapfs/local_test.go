package snapfs

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemFS(t *testing.T) (afero.Fs, *Local) {
	t.Helper()
	afs := afero.NewMemMapFs()
	return afs, NewLocal(afs)
}

func mustWrite(t *testing.T, afs afero.Fs, path string, data string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(afs, path, []byte(data), 0o644))
}

func TestLocalListDir(t *testing.T) {
	afs, fs := newMemFS(t)
	require.NoError(t, afs.MkdirAll("/root/sub", 0o755))
	mustWrite(t, afs, "/root/a.txt", "aa")
	mustWrite(t, afs, "/root/sub/b.txt", "b")

	entries, err := fs.ListDir(context.Background(), "/root")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	assert.Equal(t, "a.txt", entries[0].Name)
	assert.False(t, entries[0].IsDir)
	assert.EqualValues(t, 2, entries[0].Size)
	assert.Equal(t, "sub", entries[1].Name)
	assert.True(t, entries[1].IsDir)
}

func TestLocalListDirNotFound(t *testing.T) {
	_, fs := newMemFS(t)

	_, err := fs.ListDir(context.Background(), "/missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var pathErr *PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "ListDir", pathErr.Op)
	assert.Equal(t, "/missing", pathErr.Path)
}

func TestLocalWalkVisitsFilesOnly(t *testing.T) {
	afs, fs := newMemFS(t)
	mustWrite(t, afs, "/root/a/b/file1", "x")
	mustWrite(t, afs, "/root/a/file2", "x")
	mustWrite(t, afs, "/root/file3", "x")

	var seen []string
	err := fs.Walk(context.Background(), "/root", func(p string, entry Entry) error {
		assert.False(t, entry.IsDir)
		seen = append(seen, entry.Name)
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"file1", "file2", "file3"}, seen)
}

func TestLocalWalkNotFound(t *testing.T) {
	_, fs := newMemFS(t)

	err := fs.Walk(context.Background(), "/missing", func(string, Entry) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalWalkPropagatesCallbackError(t *testing.T) {
	afs, fs := newMemFS(t)
	mustWrite(t, afs, "/root/file1", "x")

	sentinel := errors.New("stop")
	err := fs.Walk(context.Background(), "/root", func(string, Entry) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}

func TestLocalStat(t *testing.T) {
	afs, fs := newMemFS(t)
	mustWrite(t, afs, "/root/file1", "abc")

	entry, err := fs.Stat(context.Background(), "/root/file1")
	require.NoError(t, err)
	assert.Equal(t, "file1", entry.Name)
	assert.EqualValues(t, 3, entry.Size)
	assert.False(t, entry.ModTime.IsZero())

	_, err = fs.Stat(context.Background(), "/root/nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalRespectsContextCancellation(t *testing.T) {
	afs, fs := newMemFS(t)
	mustWrite(t, afs, "/root/file1", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fs.ListDir(ctx, "/root")
	assert.ErrorIs(t, err, context.Canceled)
}
