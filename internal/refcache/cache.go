package refcache

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/snapref-io/snapref/internal/enumerator"
	"github.com/snapref-io/snapref/internal/snapfs"
)

// CandidateFile is a deletion candidate the cleaner asks the cache about.
// Classification is by base name: a candidate is referenced if any snapshot
// references a file of the same name.
type CandidateFile struct {
	// Path is the full path of the candidate.
	Path string

	// Name is the base name compared against snapshot reference sets.
	Name string
}

// Candidate builds a CandidateFile from a path.
func Candidate(p string) CandidateFile {
	return CandidateFile{Path: p, Name: path.Base(p)}
}

// Candidates builds CandidateFiles from paths.
func Candidates(paths ...string) []CandidateFile {
	out := make([]CandidateFile, 0, len(paths))
	for _, p := range paths {
		out = append(out, Candidate(p))
	}
	return out
}

// Config configures a Cache.
type Config struct {
	// Root is the snapshot root directory. Each immediate child is one
	// completed snapshot, except the reserved working directory.
	Root string

	// WorkingDirName is the reserved child of Root holding in-progress
	// snapshots. Default: snapfs.DefaultWorkingDirName.
	WorkingDirName string

	// RefreshPeriod is the interval of the background refresh loop.
	// Zero or negative disables periodic refreshing; on-demand refreshes
	// still work.
	RefreshPeriod time.Duration

	// StalenessBound is an advisory bound on generation age, reported
	// through IsStale. It does not trigger refreshes by itself.
	// Default: 2 * RefreshPeriod when a period is set.
	StalenessBound time.Duration

	// Name identifies this cache instance in logs.
	// Default: "snapshot-refcache".
	Name string
}

func (c *Config) applyDefaults() {
	if c.WorkingDirName == "" {
		c.WorkingDirName = snapfs.DefaultWorkingDirName
	}
	if c.StalenessBound <= 0 && c.RefreshPeriod > 0 {
		c.StalenessBound = 2 * c.RefreshPeriod
	}
	if c.Name == "" {
		c.Name = "snapshot-refcache"
	}
}

// Cache answers "is this file still referenced by any snapshot?" for the
// cleaner without re-scanning the snapshot namespace on every query.
//
// Completed snapshots are cached in immutable generations (see Generation);
// in-progress snapshots are re-scanned live on every query. The cache is a
// pure observer: it never creates, mutates, or deletes anything under the
// snapshot root.
type Cache struct {
	fs      snapfs.FS
	enum    enumerator.Enumerator
	cfg     Config
	store   *Store
	scanner ProgressScanner
	metrics MetricsRecorder
	logger  *logrus.Entry

	// refreshMu serializes refresh execution across the periodic and
	// on-demand trigger paths. Readers never take it.
	refreshMu   sync.Mutex
	lastRefresh atomic.Int64 // unix nanos of the last successful refresh

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Option customizes a Cache.
type Option func(*Cache)

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithLogger sets the cache's logger.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Cache) { c.logger = l }
}

// WithProgressScanner replaces the default working-directory scanner.
// Intended for tests that need to observe or fake the live scan.
func WithProgressScanner(s ProgressScanner) Option {
	return func(c *Cache) { c.scanner = s }
}

// New creates a Cache over fs rooted at cfg.Root, using enum to compute each
// snapshot's referenced files. The periodic refresh loop is not started until
// Start is called.
func New(fs snapfs.FS, enum enumerator.Enumerator, cfg Config, opts ...Option) *Cache {
	cfg.applyDefaults()
	c := &Cache{
		fs:    fs,
		enum:  enum,
		cfg:   cfg,
		store: NewStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.scanner == nil {
		c.scanner = newWorkingDirScanner(fs, snapfs.WorkingDir(cfg.Root, cfg.WorkingDirName))
	}
	if c.logger == nil {
		c.logger = logrus.StandardLogger().WithField("component", "refcache")
	}
	c.logger = c.logger.WithField("cache", cfg.Name)
	return c
}

// GetUnreferencedFiles returns the subset of candidates not referenced by
// any known snapshot, completed or in-progress.
//
// The check is two-phase: candidates are first resolved against the live
// generation and a fresh working-directory scan; only if some remain does the
// cache pay for one synchronous refresh and a final re-check. The refresh
// cost is therefore bounded to once per call, not once per candidate, and is
// only paid for first-seen files.
//
// Any scan or refresh failure is returned instead of a partial result: a file
// is never classified unreferenced through a code path that failed to inspect
// a snapshot.
func (c *Cache) GetUnreferencedFiles(ctx context.Context, candidates []CandidateFile) ([]CandidateFile, error) {
	unresolved := dropReferenced(candidates, c.store.Current())
	if len(unresolved) > 0 {
		inProgress, err := c.SnapshotsInProgress(ctx)
		if err != nil {
			return nil, err
		}
		unresolved = dropNamed(unresolved, inProgress)
	}

	if len(unresolved) > 0 {
		// Remaining candidates may belong to a snapshot created since the
		// last refresh. Exactly one forced refresh; the in-progress view is
		// already current and a refresh does not affect it.
		if err := c.TriggerRefresh(ctx); err != nil {
			return nil, err
		}
		unresolved = dropReferenced(unresolved, c.store.Current())
	}

	if c.metrics != nil {
		c.metrics.RecordQuery(len(candidates), len(unresolved))
	}
	return unresolved, nil
}

// SnapshotsInProgress returns the base names of every file currently staged
// under the working directory. The filesystem is re-read on every call.
func (c *Cache) SnapshotsInProgress(ctx context.Context) (map[string]struct{}, error) {
	start := time.Now()
	names, err := c.scanner.SnapshotsInProgress(ctx)
	if c.metrics != nil {
		c.metrics.RecordInProgressScan(time.Since(start).Seconds(), err == nil)
	}
	return names, err
}

// TriggerRefresh synchronously computes and installs a new generation from
// the current filesystem state. Concurrent triggers are serialized; each one
// performs its own listing, so a refresh always observes the filesystem at or
// after the time it was requested.
//
// On failure the previous generation stays live and the error is returned.
func (c *Cache) TriggerRefresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	start := time.Now()
	gen, err := c.computeGeneration(ctx)
	if c.metrics != nil {
		c.metrics.RecordRefresh(time.Since(start).Seconds(), err == nil)
	}
	if err != nil {
		return err
	}

	c.store.Install(gen)
	c.lastRefresh.Store(time.Now().UnixNano())
	if c.metrics != nil {
		c.metrics.RecordGeneration(gen.NumSnapshots(), gen.NumFiles())
	}
	c.logger.WithFields(logrus.Fields{
		"generation": gen.ID(),
		"snapshots":  gen.NumSnapshots(),
		"files":      gen.NumFiles(),
		"took":       time.Since(start),
	}).Debug("installed new cache generation")
	return nil
}

// computeGeneration builds the next generation. Called with refreshMu held.
func (c *Cache) computeGeneration(ctx context.Context) (*Generation, error) {
	entries, err := c.fs.ListDir(ctx, c.cfg.Root)
	if err != nil {
		// A missing root means no snapshots exist yet.
		if !errors.Is(err, snapfs.ErrNotFound) {
			return nil, fmt.Errorf("list snapshot root %q: %w", c.cfg.Root, err)
		}
		entries = nil
	}

	prev := c.store.Current()
	snapshots := make(map[string]snapshotEntry, len(entries))
	for _, entry := range entries {
		if !entry.IsDir || entry.Name == c.cfg.WorkingDirName {
			continue
		}

		// A cached enumeration is carried over only when the directory
		// provably has not changed since it was taken: same name AND same
		// modification time. A snapshot deleted and recreated under the
		// same name gets a new mod time and is re-enumerated. A zero mod
		// time (object-store prefixes) carries no change signal, so those
		// snapshots are re-enumerated every refresh.
		if prevEntry, ok := prev.entry(entry.Name); ok &&
			!entry.ModTime.IsZero() && prevEntry.modTime.Equal(entry.ModTime) {
			snapshots[entry.Name] = prevEntry
			continue
		}

		files, err := c.enum.FilesUnderSnapshot(ctx, c.fs, snapfs.SnapshotDir(c.cfg.Root, entry.Name))
		if err != nil {
			// The directory vanished between listing and enumeration: the
			// snapshot was deleted, not an error. Omit it.
			if errors.Is(err, snapfs.ErrNotFound) {
				c.logger.WithField("snapshot", entry.Name).
					Debug("snapshot deleted during refresh, omitting")
				continue
			}
			// Any other enumeration failure aborts the whole refresh.
			// Skipping a snapshot we failed to inspect could under-report
			// references.
			return nil, fmt.Errorf("enumerate snapshot %q: %w", entry.Name, err)
		}
		snapshots[entry.Name] = snapshotEntry{files: files, modTime: entry.ModTime}
	}

	// Snapshots present in prev but absent here are dropped lazily: they
	// simply do not appear in the new generation.
	return newGeneration(snapshots), nil
}

// Current returns the live generation.
func (c *Cache) Current() *Generation {
	return c.store.Current()
}

// LastRefresh returns the time of the last successful refresh, or the zero
// time if none has completed.
func (c *Cache) LastRefresh() time.Time {
	nanos := c.lastRefresh.Load()
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}

// IsStale reports whether the live generation is older than the configured
// staleness bound. Advisory only; queries still answer from the live
// generation regardless.
func (c *Cache) IsStale() bool {
	if c.cfg.StalenessBound <= 0 {
		return false
	}
	last := c.LastRefresh()
	if last.IsZero() {
		return true
	}
	return time.Since(last) > c.cfg.StalenessBound
}

// dropReferenced filters out candidates referenced by gen, preserving order.
func dropReferenced(candidates []CandidateFile, gen *Generation) []CandidateFile {
	var out []CandidateFile
	for _, cand := range candidates {
		if !gen.References(cand.Name) {
			out = append(out, cand)
		}
	}
	return out
}

// dropNamed filters out candidates whose name appears in names.
func dropNamed(candidates []CandidateFile, names map[string]struct{}) []CandidateFile {
	var out []CandidateFile
	for _, cand := range candidates {
		if _, ok := names[cand.Name]; !ok {
			out = append(out, cand)
		}
	}
	return out
}
