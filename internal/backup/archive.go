package backup

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// ArchiveSnapshot exports the named snapshot as a zstd-compressed tarball
// next to it (backup_<id>.tar.zst) and returns the archive path. The
// snapshot directory itself is left untouched.
func (d *Destination) ArchiveSnapshot(id string) (string, error) {
	dir := d.snapshotDir(id)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}

	outputPath := dir + ".tar.zst"
	outFile, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("create archive file: %w", err)
	}
	defer outFile.Close()

	level := zstd.SpeedDefault
	if ok, parsed := zstd.EncoderLevelFromString(d.cfg.Archive.Level); ok {
		level = parsed
	}
	writer, err := zstd.NewWriter(outFile, zstd.WithEncoderLevel(level))
	if err != nil {
		return "", fmt.Errorf("create zstd writer: %w", err)
	}
	tw := tar.NewWriter(writer)

	walkErr := filepath.WalkDir(dir, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		info, err := de.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		in, err := os.Open(p)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(tw, in)
		return err
	})
	if walkErr != nil {
		writer.Close()
		os.Remove(outputPath)
		return "", fmt.Errorf("archive snapshot %q: %w", id, walkErr)
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("finish tar stream: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finish zstd stream: %w", err)
	}

	d.log.Info("snapshot archived", "snapshot", id, "archive", outputPath)
	return outputPath, nil
}
