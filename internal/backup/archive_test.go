package backup

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	zr, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()

	contents := map[string]string{}
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		contents[hdr.Name] = string(data)
	}
	return contents
}

func TestArchiveSnapshot_UnknownID(t *testing.T) {
	d := newTestDestination(t)

	_, err := d.ArchiveSnapshot("19990101_000000")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestArchiveSnapshot_RoundTrip(t *testing.T) {
	d := newTestDestination(t)
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"a.txt":     "hello",
		"sub/b.txt": "world",
	})

	summary, err := d.RunBackup(context.Background(), src, ModeFull, nil)
	require.NoError(t, err)

	archivePath, err := d.ArchiveSnapshot(summary.Timestamp)
	require.NoError(t, err)
	assert.Equal(t, summary.Destination+".tar.zst", archivePath)

	assert.Equal(t, map[string]string{
		"a.txt":     "hello",
		"sub/b.txt": "world",
	}, readArchive(t, archivePath))

	// The snapshot directory itself is untouched.
	result, err := d.VerifySnapshot(summary.Timestamp)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Verified)
}
