package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldCopy(t *testing.T) {
	hashes := map[string]string{
		"/src/known.txt": "aaaa",
	}

	tests := []struct {
		name   string
		path   string
		digest string
		mode   Mode
		want   bool
	}{
		{
			name:   "full mode always copies known unchanged file",
			path:   "/src/known.txt",
			digest: "aaaa",
			mode:   ModeFull,
			want:   true,
		},
		{
			name:   "full mode copies unknown file",
			path:   "/src/new.txt",
			digest: "bbbb",
			mode:   ModeFull,
			want:   true,
		},
		{
			name:   "incremental copies unknown file",
			path:   "/src/new.txt",
			digest: "bbbb",
			mode:   ModeIncremental,
			want:   true,
		},
		{
			name:   "incremental copies changed file",
			path:   "/src/known.txt",
			digest: "cccc",
			mode:   ModeIncremental,
			want:   true,
		},
		{
			name:   "incremental skips unchanged file",
			path:   "/src/known.txt",
			digest: "aaaa",
			mode:   ModeIncremental,
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shouldCopy(tt.path, tt.digest, tt.mode, hashes)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShouldCopy_DoesNotMutateHashes(t *testing.T) {
	hashes := map[string]string{"/src/a": "aaaa"}
	shouldCopy("/src/b", "bbbb", ModeIncremental, hashes)
	assert.Equal(t, map[string]string{"/src/a": "aaaa"}, hashes)
}
