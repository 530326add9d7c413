package refcache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCurrentNeverNil(t *testing.T) {
	store := NewStore()
	gen := store.Current()
	require.NotNil(t, gen)
	assert.Equal(t, 0, gen.NumSnapshots())
}

func TestStoreInstallReplacesWholesale(t *testing.T) {
	store := NewStore()

	g1 := newGeneration(map[string]snapshotEntry{
		"s1": {files: map[string]struct{}{"f1": {}}},
	})
	store.Install(g1)
	assert.Same(t, g1, store.Current())

	g2 := newGeneration(map[string]snapshotEntry{
		"s2": {files: map[string]struct{}{"f2": {}}},
	})
	store.Install(g2)

	current := store.Current()
	assert.Same(t, g2, current)
	assert.False(t, current.References("f1"), "no mixing of generations")
	assert.True(t, current.References("f2"))
}

func TestStoreConcurrentReadersSeeCompleteGenerations(t *testing.T) {
	store := NewStore()

	gens := make([]*Generation, 0, 50)
	for i := 0; i < 50; i++ {
		gens = append(gens, newGeneration(map[string]snapshotEntry{
			"s": {files: map[string]struct{}{"f": {}}},
		}))
	}
	known := make(map[*Generation]bool, len(gens)+1)
	known[store.Current()] = true
	for _, g := range gens {
		known[g] = true
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errCh := make(chan *Generation, 1)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				g := store.Current()
				if !known[g] {
					select {
					case errCh <- g:
					default:
					}
					return
				}
			}
		}()
	}

	for _, g := range gens {
		store.Install(g)
	}
	close(stop)
	wg.Wait()

	select {
	case g := <-errCh:
		t.Fatalf("reader observed unknown generation %p", g)
	default:
	}
	assert.Same(t, gens[len(gens)-1], store.Current())
}
