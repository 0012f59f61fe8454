package backup

import (
	"context"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"snapback/internal/hash"
	"snapback/internal/history"
)

type fileOutcome int

const (
	outcomeBackedUp fileOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// fileEntry is one candidate file discovered under the source tree.
type fileEntry struct {
	rel string
	abs string
}

// fileResult is the outcome of processing one candidate. Failures are data
// here, not control flow: the aggregation loop treats all three outcomes
// uniformly and a failed file never aborts the run.
type fileResult struct {
	fileEntry
	digest  string
	size    int64
	outcome fileOutcome
	err     error
}

// RunBackup backs up sourceRoot into a fresh timestamped snapshot directory.
// Files matching excludePatterns are skipped without hashing; in incremental
// mode unchanged files are skipped as well. Per-file failures are collected
// in the returned summary and never abort the run. The summary is appended
// to the history and persisted exactly once, after all files are done.
//
// Cancelling ctx stops dispatching new files; files already in flight finish
// and the partial summary is still recorded.
func (d *Destination) RunBackup(
	ctx context.Context,
	sourceRoot string,
	mode Mode,
	excludePatterns []string,
) (history.RunSummary, error) {
	source, err := filepath.Abs(sourceRoot)
	if err != nil {
		return history.RunSummary{}, fmt.Errorf("resolve source %q: %w", sourceRoot, err)
	}
	info, err := os.Stat(source)
	if err != nil || !info.IsDir() {
		return history.RunSummary{}, fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}

	id := d.newSnapshotID()
	snapDir := d.snapshotDir(id)
	if err := ensureDir(snapDir); err != nil {
		return history.RunSummary{}, fmt.Errorf("create snapshot: %w", err)
	}

	d.log.Info("backup started",
		"source", source,
		"snapshot", snapDir,
		"mode", string(mode),
	)

	summary := history.RunSummary{
		Timestamp:   id,
		Source:      source,
		Destination: snapDir,
		Mode:        string(mode),
		Errors:      []string{},
	}

	// Enumerate first: count every file, settle exclusions, collect
	// candidates for the pool.
	var entries []fileEntry
	walkErr := filepath.WalkDir(source, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			if p == source {
				return err
			}
			rel, relErr := filepath.Rel(source, p)
			if relErr != nil {
				rel = p
			}
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", rel, err))
			return nil
		}
		if de.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(source, p)
		if err != nil {
			return err
		}
		summary.FilesChecked++
		if excluded(rel, excludePatterns) {
			summary.FilesSkipped++
			d.log.Debug("excluded", "file", rel)
			return nil
		}
		entries = append(entries, fileEntry{rel: rel, abs: p})
		return nil
	})
	if walkErr != nil {
		return summary, fmt.Errorf("walk source %q: %w", source, walkErr)
	}

	// Workers read a snapshot of the digest map; only the aggregation loop
	// below writes the live one.
	prev := maps.Clone(d.history.FileHashes)

	workers := d.cfg.Backup.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan fileEntry)
	results := make(chan fileResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range jobs {
				results <- d.processFile(e, snapDir, mode, prev)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, e := range entries {
			select {
			case <-ctx.Done():
				return
			case jobs <- e:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		switch res.outcome {
		case outcomeBackedUp:
			d.history.FileHashes[res.abs] = res.digest
			summary.FilesBackedUp++
			summary.TotalSize += res.size
			d.log.Info("backed up", "file", res.rel, "size", res.size)
		case outcomeSkipped:
			summary.FilesSkipped++
			d.log.Debug("skipped", "file", res.rel)
		case outcomeFailed:
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", res.rel, res.err))
			d.log.Error("file failed", "file", res.rel, "error", res.err.Error())
		}
	}

	// One history mutation per run, flushed even after cancellation.
	d.history.Backups = append(d.history.Backups, summary)
	if err := d.history.Save(d.metaDir); err != nil {
		return summary, fmt.Errorf("persist history: %w", err)
	}

	d.log.Info("backup finished",
		"snapshot", id,
		"checked", summary.FilesChecked,
		"backed_up", summary.FilesBackedUp,
		"skipped", summary.FilesSkipped,
		"errors", len(summary.Errors),
	)
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// processFile hashes one candidate, consults the change decision, and copies
// it into the snapshot when required.
func (d *Destination) processFile(
	e fileEntry,
	snapDir string,
	mode Mode,
	prev map[string]string,
) fileResult {
	res := fileResult{fileEntry: e}

	info, err := os.Stat(e.abs)
	if err != nil {
		res.outcome = outcomeFailed
		res.err = err
		return res
	}
	digest, err := hash.File(e.abs)
	if err != nil {
		res.outcome = outcomeFailed
		res.err = err
		return res
	}
	if !shouldCopy(e.abs, digest, mode, prev) {
		res.outcome = outcomeSkipped
		return res
	}
	if err := copyFile(e.abs, filepath.Join(snapDir, e.rel), info); err != nil {
		res.outcome = outcomeFailed
		res.err = err
		return res
	}

	res.digest = digest
	res.size = info.Size()
	res.outcome = outcomeBackedUp
	return res
}
