package refcache

import (
	"context"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapref-io/snapref/internal/enumerator"
	"github.com/snapref-io/snapref/internal/snapfs"
)

func TestPeriodicRefreshPopulatesCache(t *testing.T) {
	afs, fs := newTestFS(t)
	writeFile(t, afs, path.Join(testRoot, "s1", "region1", "fam", "f1"))

	cache := New(fs, enumerator.AllFiles(), Config{
		Root:          testRoot,
		RefreshPeriod: 10 * time.Millisecond,
	})
	cache.Start()
	defer cache.Stop()

	require.Eventually(t, func() bool {
		return cache.Current().References("f1")
	}, time.Second, 5*time.Millisecond)
}

func TestPeriodicRefreshPicksUpNewSnapshots(t *testing.T) {
	afs, fs := newTestFS(t)

	cache := New(fs, enumerator.AllFiles(), Config{
		Root:          testRoot,
		RefreshPeriod: 10 * time.Millisecond,
	})
	cache.Start()
	defer cache.Stop()

	require.Eventually(t, func() bool {
		return !cache.LastRefresh().IsZero()
	}, time.Second, 5*time.Millisecond)

	writeFile(t, afs, path.Join(testRoot, "s2", "region1", "fam", "f2"))

	require.Eventually(t, func() bool {
		return cache.Current().References("f2")
	}, time.Second, 5*time.Millisecond)
}

func TestStartWithoutPeriodIsNoop(t *testing.T) {
	_, fs := newTestFS(t)
	cache := New(fs, enumerator.AllFiles(), Config{Root: testRoot})

	cache.Start()
	cache.Stop() // must not block or panic

	assert.True(t, cache.LastRefresh().IsZero())
}

func TestStartIsIdempotentAndStopJoins(t *testing.T) {
	_, fs := newTestFS(t)
	cache := New(fs, enumerator.AllFiles(), Config{
		Root:          testRoot,
		RefreshPeriod: 10 * time.Millisecond,
	})

	cache.Start()
	cache.Start() // second call is a no-op
	cache.Stop()
	cache.Stop() // stopping again is safe
}

// brokenListFS fails every root listing with a non-NotFound error.
type brokenListFS struct {
	snapfs.FS
}

func (f *brokenListFS) ListDir(ctx context.Context, dir string) ([]snapfs.Entry, error) {
	return nil, &snapfs.PathError{Op: "ListDir", Path: dir, Err: errors.New("i/o timeout")}
}

func TestPeriodicRefreshSurvivesIOErrors(t *testing.T) {
	afs, fs := newTestFS(t)
	writeFile(t, afs, path.Join(testRoot, "s1", "region1", "fam", "f1"))

	cache := New(fs, enumerator.AllFiles(), Config{Root: testRoot})
	require.NoError(t, cache.TriggerRefresh(context.Background()))
	prev := cache.Current()

	// Swap in a broken filesystem: the loop keeps running and the last
	// good generation stays live.
	broken := New(&brokenListFS{FS: fs}, enumerator.AllFiles(), Config{
		Root:          testRoot,
		RefreshPeriod: 10 * time.Millisecond,
	})
	broken.store.Install(prev)
	broken.Start()

	time.Sleep(50 * time.Millisecond)
	broken.Stop()

	assert.Same(t, prev, broken.Current())
	assert.True(t, broken.Current().References("f1"))
}
