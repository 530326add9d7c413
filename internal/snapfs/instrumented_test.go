package snapfs

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecorder records operation outcomes for assertions.
type fakeRecorder struct {
	listDir []bool
	walk    []bool
	stat    []bool
}

func (r *fakeRecorder) RecordListDir(_ float64, success bool) { r.listDir = append(r.listDir, success) }
func (r *fakeRecorder) RecordWalk(_ float64, success bool)    { r.walk = append(r.walk, success) }
func (r *fakeRecorder) RecordStat(_ float64, success bool)    { r.stat = append(r.stat, success) }

func TestInstrumentedRecordsOperations(t *testing.T) {
	afs := afero.NewMemMapFs()
	mustWrite(t, afs, "/root/file1", "x")

	rec := &fakeRecorder{}
	fs := NewInstrumented(NewLocal(afs), rec)
	ctx := context.Background()

	_, err := fs.ListDir(ctx, "/root")
	require.NoError(t, err)
	_, err = fs.ListDir(ctx, "/missing")
	require.Error(t, err)

	require.NoError(t, fs.Walk(ctx, "/root", func(string, Entry) error { return nil }))

	_, err = fs.Stat(ctx, "/root/file1")
	require.NoError(t, err)

	assert.Equal(t, []bool{true, false}, rec.listDir)
	assert.Equal(t, []bool{true}, rec.walk)
	assert.Equal(t, []bool{true}, rec.stat)
}

func TestInstrumentedNilRecorderPassesThrough(t *testing.T) {
	afs := afero.NewMemMapFs()
	mustWrite(t, afs, "/root/file1", "x")

	fs := NewInstrumented(NewLocal(afs), nil)

	entries, err := fs.ListDir(context.Background(), "/root")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
