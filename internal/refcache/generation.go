package refcache

import (
	"time"

	"github.com/google/uuid"
)

// snapshotEntry is one snapshot's contribution to a generation: its
// referenced file names plus the modification time of its directory as
// observed when it was enumerated. The mod time is the change signal for
// reuse across refreshes; zero means the backend could not observe one.
type snapshotEntry struct {
	files   map[string]struct{}
	modTime time.Time
}

// Generation is one immutable, fully-computed version of the reference
// cache's mapping from snapshot name to referenced file names.
//
// A Generation is built in full by a refresh and then installed wholesale;
// it is never mutated afterwards, so readers can hold one across a query
// without locking. The merged file set is precomputed so the query path is a
// single map lookup per candidate.
type Generation struct {
	id        string
	createdAt time.Time
	snapshots map[string]snapshotEntry
	files     map[string]struct{}
}

// newGeneration builds a generation from a snapshot-name → entry map.
// Ownership of the map and its sets transfers to the generation.
func newGeneration(snapshots map[string]snapshotEntry) *Generation {
	merged := make(map[string]struct{})
	for _, entry := range snapshots {
		for name := range entry.files {
			merged[name] = struct{}{}
		}
	}
	return &Generation{
		id:        uuid.NewString(),
		createdAt: time.Now(),
		snapshots: snapshots,
		files:     merged,
	}
}

// emptyGeneration returns a generation with no snapshots. Installed at
// construction time so readers never observe a nil generation.
func emptyGeneration() *Generation {
	return newGeneration(map[string]snapshotEntry{})
}

// ID returns the generation's unique identifier.
func (g *Generation) ID() string {
	return g.id
}

// CreatedAt returns the time the generation was computed.
func (g *Generation) CreatedAt() time.Time {
	return g.createdAt
}

// References reports whether any snapshot in this generation references the
// given file name.
func (g *Generation) References(fileName string) bool {
	_, ok := g.files[fileName]
	return ok
}

// entry returns a snapshot's full entry, if present. Used by the refresh
// path to decide whether the cached enumeration can be carried over.
func (g *Generation) entry(name string) (snapshotEntry, bool) {
	entry, ok := g.snapshots[name]
	return entry, ok
}

// Snapshot returns the referenced file set of a snapshot, if present.
// The returned set must not be modified.
func (g *Generation) Snapshot(name string) (map[string]struct{}, bool) {
	entry, ok := g.snapshots[name]
	return entry.files, ok
}

// SnapshotNames returns the names of all snapshots in this generation.
func (g *Generation) SnapshotNames() []string {
	names := make([]string, 0, len(g.snapshots))
	for name := range g.snapshots {
		names = append(names, name)
	}
	return names
}

// NumSnapshots returns the number of snapshots in this generation.
func (g *Generation) NumSnapshots() int {
	return len(g.snapshots)
}

// NumFiles returns the number of distinct referenced file names.
func (g *Generation) NumFiles() int {
	return len(g.files)
}
