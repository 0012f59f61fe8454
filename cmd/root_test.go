package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapback/internal/backup"
	"snapback/internal/config"
)

func resetRootFlags(t *testing.T) {
	t.Helper()
	cfgFile = ""
	fullMode = false
	listMode = false
	verifyID = ""
	excludes = nil
}

func execRoot(t *testing.T, args ...string) error {
	t.Helper()
	resetRootFlags(t)
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func writeSource(t *testing.T, files map[string]string) string {
	t.Helper()
	src := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(src, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return src
}

func destinationRuns(t *testing.T, dst string) []string {
	t.Helper()
	d, err := backup.OpenDestination(dst, config.Default())
	require.NoError(t, err)
	defer d.Close()
	var ids []string
	for _, run := range d.ListRuns() {
		ids = append(ids, run.Timestamp)
	}
	return ids
}

func TestRoot_MissingArgsShowsUsage(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)

	require.NoError(t, execRoot(t))
	assert.Contains(t, out.String(), "Usage:")
}

func TestRoot_UnknownFlagShowsUsage(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)

	err := execRoot(t, "--bogus")
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, out.String(), "Usage:")
}

func TestRoot_BackupListVerifyFlow(t *testing.T) {
	src := writeSource(t, map[string]string{"a.txt": "hello", "sub/b.txt": "world"})
	dst := t.TempDir()

	require.NoError(t, execRoot(t, src, dst, "--full"))

	runs := destinationRuns(t, dst)
	require.Len(t, runs, 1)

	require.NoError(t, execRoot(t, src, dst, "--list"))
	require.NoError(t, execRoot(t, src, dst, "--verify", runs[0]))
}

func TestRoot_VerifyUnknownSnapshot(t *testing.T) {
	src := writeSource(t, map[string]string{"a.txt": "hello"})
	dst := t.TempDir()

	err := execRoot(t, src, dst, "--verify", "19990101_000000")
	assert.ErrorIs(t, err, backup.ErrSnapshotNotFound)
}

func TestRoot_ExcludeFlag(t *testing.T) {
	src := writeSource(t, map[string]string{"keep.txt": "keep", "drop.tmp": "drop"})
	dst := t.TempDir()

	require.NoError(t, execRoot(t, src, dst, "--full", "-e", "*.tmp"))

	runs := destinationRuns(t, dst)
	require.Len(t, runs, 1)
	snapshot := filepath.Join(dst, "backup_"+runs[0])
	assert.FileExists(t, filepath.Join(snapshot, "keep.txt"))
	assert.NoFileExists(t, filepath.Join(snapshot, "drop.tmp"))
}

func TestArchiveCommand(t *testing.T) {
	src := writeSource(t, map[string]string{"a.txt": "hello"})
	dst := t.TempDir()

	require.NoError(t, execRoot(t, src, dst, "--full"))
	runs := destinationRuns(t, dst)
	require.Len(t, runs, 1)

	require.NoError(t, execRoot(t, "archive", dst, runs[0]))
	assert.FileExists(t, filepath.Join(dst, "backup_"+runs[0]+".tar.zst"))
}
