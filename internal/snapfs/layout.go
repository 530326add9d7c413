package snapfs

import "path"

// DefaultWorkingDirName is the reserved child of the snapshot root under
// which in-progress snapshots are staged. It is never treated as a snapshot
// by the cache.
const DefaultWorkingDirName = ".tmp"

// LogDirName is the per-snapshot subdirectory holding referenced log files.
const LogDirName = ".logs"

// SnapshotDir returns the directory of a completed snapshot.
func SnapshotDir(root, name string) string {
	return path.Join(root, name)
}

// WorkingDir returns the working directory for in-progress snapshots.
// An empty workingName falls back to DefaultWorkingDirName.
func WorkingDir(root, workingName string) string {
	if workingName == "" {
		workingName = DefaultWorkingDirName
	}
	return path.Join(root, workingName)
}

// SnapshotLogDir returns the log directory of a snapshot.
func SnapshotLogDir(snapshotDir string) string {
	return path.Join(snapshotDir, LogDirName)
}
