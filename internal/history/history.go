// Package history persists the per-destination backup record: the ordered log
// of past runs and the last known content digest of every source file.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the history document inside the destination metadata area.
const FileName = "history.json"

// ErrHistoryCorrupt indicates the persisted history exists but cannot be
// parsed. Surfaced explicitly so callers can refuse to run rather than
// silently start from an empty record.
var ErrHistoryCorrupt = errors.New("backup history corrupt")

// RunSummary records one backup run. Appended to the history once the run is
// finished and never mutated afterwards.
type RunSummary struct {
	Timestamp     string   `json:"timestamp"`
	Source        string   `json:"source"`
	Destination   string   `json:"destination"`
	Mode          string   `json:"mode"`
	FilesChecked  int      `json:"files_checked"`
	FilesBackedUp int      `json:"files_backed_up"`
	FilesSkipped  int      `json:"files_skipped"`
	TotalSize     int64    `json:"total_size"`
	Errors        []string `json:"errors"`
}

// Record is the whole persisted document: run log plus digest map keyed by
// absolute source path.
type Record struct {
	Backups    []RunSummary      `json:"backups"`
	FileHashes map[string]string `json:"file_hashes"`
}

// NewRecord returns an empty, usable record.
func NewRecord() *Record {
	return &Record{
		Backups:    []RunSummary{},
		FileHashes: map[string]string{},
	}
}

// Load reads the record from dir. A missing file is not an error and yields
// an empty record; an unparseable one fails with ErrHistoryCorrupt.
func Load(dir string) (*Record, error) {
	path := filepath.Join(dir, FileName)
	jsonFile, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewRecord(), nil
		}
		return nil, fmt.Errorf("open history file %q: %w", path, err)
	}
	defer jsonFile.Close()

	rec := NewRecord()
	decoder := json.NewDecoder(jsonFile)
	if err := decoder.Decode(rec); err != nil {
		return nil, fmt.Errorf("%w: decode %q: %v", ErrHistoryCorrupt, path, err)
	}
	if rec.Backups == nil {
		rec.Backups = []RunSummary{}
	}
	if rec.FileHashes == nil {
		rec.FileHashes = map[string]string{}
	}
	return rec, nil
}

// Save writes the record into dir. The document is written to a temporary
// file and renamed into place, so a crash mid-write leaves either the old or
// the new history, never a torn one.
func (r *Record) Save(dir string) error {
	path := filepath.Join(dir, FileName)
	tmp := path + ".tmp"

	jsonFile, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create history file %q: %w", tmp, err)
	}

	encoder := json.NewEncoder(jsonFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		jsonFile.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode history JSON: %w", err)
	}
	if err := jsonFile.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close history file %q: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace history file %q: %w", path, err)
	}
	return nil
}
