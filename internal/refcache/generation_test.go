package refcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerationReferences(t *testing.T) {
	gen := newGeneration(map[string]snapshotEntry{
		"s1": {files: map[string]struct{}{"f1": {}, "f2": {}}},
		"s2": {files: map[string]struct{}{"f2": {}, "f3": {}}},
	})

	assert.True(t, gen.References("f1"))
	assert.True(t, gen.References("f2"))
	assert.True(t, gen.References("f3"))
	assert.False(t, gen.References("f4"))

	assert.Equal(t, 2, gen.NumSnapshots())
	assert.Equal(t, 3, gen.NumFiles(), "merged set deduplicates shared names")
	assert.ElementsMatch(t, []string{"s1", "s2"}, gen.SnapshotNames())

	files, ok := gen.Snapshot("s1")
	assert.True(t, ok)
	assert.Len(t, files, 2)

	_, ok = gen.Snapshot("missing")
	assert.False(t, ok)

	assert.NotEmpty(t, gen.ID())
	assert.False(t, gen.CreatedAt().IsZero())
}

func TestGenerationEntryCarriesModTime(t *testing.T) {
	when := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	gen := newGeneration(map[string]snapshotEntry{
		"s1": {files: map[string]struct{}{"f1": {}}, modTime: when},
	})

	entry, ok := gen.entry("s1")
	assert.True(t, ok)
	assert.True(t, entry.modTime.Equal(when))

	_, ok = gen.entry("missing")
	assert.False(t, ok)
}

func TestGenerationIDsAreUnique(t *testing.T) {
	a := emptyGeneration()
	b := emptyGeneration()
	assert.NotEqual(t, a.ID(), b.ID())
}
