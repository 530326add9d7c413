// Package refcache implements the snapshot reference cache consulted by the
// cleaner before it deletes a data file.
//
// # Model
//
// Completed snapshots live as directories under a snapshot root; their
// referenced file sets are immutable once the snapshot finishes. The cache
// computes those sets with a pluggable [enumerator.Enumerator] and publishes
// them as immutable [Generation] values behind one atomic reference, replaced
// wholesale on every refresh. Readers never lock and never observe a torn
// mix of two generations.
//
// In-progress snapshots under the reserved working directory are never
// cached: every query re-walks the working tree, because files move rapidly
// while a snapshot is being built.
//
// # Safety
//
// The cache must never report a referenced file as unreferenced. Everything
// bends toward that: a failed refresh keeps the previous generation live, an
// enumeration failure aborts the whole refresh, and queries propagate errors
// instead of returning partial results. The inverse staleness (reporting a
// deleted snapshot's files as still referenced until the next refresh) is
// accepted.
//
// # Usage
//
//	cache := refcache.New(fs, enumerator.AllFiles(), refcache.Config{
//	    Root:          "/data/.snapshots",
//	    RefreshPeriod: 5 * time.Minute,
//	})
//	cache.Start()
//	defer cache.Stop()
//
//	deletable, err := cache.GetUnreferencedFiles(ctx, candidates)
package refcache
