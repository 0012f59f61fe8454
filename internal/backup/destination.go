// Package backup implements the incremental backup engine: timestamped
// snapshots under a destination root, hash-based change detection against a
// persisted history, and post-hoc snapshot verification.
package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"snapback/internal/config"
	"snapback/internal/history"
	"snapback/internal/logger"
)

const (
	metadataDirName = ".backup_metadata"
	lockFileName    = "lock"
	snapshotPrefix  = "backup_"
	timestampLayout = "20060102_150405"
)

// ErrSourceNotFound indicates the backup source directory does not exist or
// is not a directory.
var ErrSourceNotFound = errors.New("backup source not found")

// ErrSnapshotNotFound indicates the named snapshot directory does not exist
// under the destination.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrDestinationLocked indicates another process holds the destination open.
var ErrDestinationLocked = errors.New("destination locked by another process")

// Destination is an open backup destination: the snapshot root plus its
// metadata area and loaded history. A Destination holds an exclusive file
// lock until Close, so at most one process mutates the history at a time.
type Destination struct {
	root    string
	metaDir string
	history *history.Record
	lock    *flock.Flock
	cfg     config.Config
	log     logger.Logger

	// now is replaceable in tests to force snapshot name collisions.
	now func() time.Time
}

// OpenDestination opens (creating if absent) the destination at path and
// loads its history. Idempotent on the filesystem side. The caller must
// Close the returned Destination to release the lock.
func OpenDestination(path string, cfg config.Config) (*Destination, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve destination %q: %w", path, err)
	}
	metaDir := filepath.Join(root, metadataDirName)
	if err := ensureDir(metaDir); err != nil {
		return nil, err
	}

	lock := flock.New(filepath.Join(metaDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock destination %q: %w", root, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrDestinationLocked, root)
	}

	rec, err := history.Load(metaDir)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	return &Destination{
		root:    root,
		metaDir: metaDir,
		history: rec,
		lock:    lock,
		cfg:     cfg,
		log:     logger.Global(),
		now:     time.Now,
	}, nil
}

// Close releases the destination lock.
func (d *Destination) Close() error {
	return d.lock.Unlock()
}

// Root returns the destination root directory.
func (d *Destination) Root() string {
	return d.root
}

// ListRuns returns the summaries of all past runs in chronological order.
func (d *Destination) ListRuns() []history.RunSummary {
	runs := make([]history.RunSummary, len(d.history.Backups))
	copy(runs, d.history.Backups)
	return runs
}

// snapshotDir maps a snapshot id to its directory under the root.
func (d *Destination) snapshotDir(id string) string {
	return filepath.Join(d.root, snapshotPrefix+id)
}

// newSnapshotID derives a snapshot id from the current time, appending a
// numeric suffix when a run in the same clock second already claimed the
// name. Two runs never share a snapshot directory.
func (d *Destination) newSnapshotID() string {
	ts := d.now().Format(timestampLayout)
	id := ts
	for n := 2; ; n++ {
		if _, err := os.Stat(d.snapshotDir(id)); os.IsNotExist(err) {
			return id
		}
		id = fmt.Sprintf("%s.%d", ts, n)
	}
}
