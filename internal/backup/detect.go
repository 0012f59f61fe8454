package backup

// Mode selects how a run decides which files to copy.
type Mode string

const (
	// ModeFull copies every eligible file regardless of prior digests.
	ModeFull Mode = "full"
	// ModeIncremental copies only files that are new or whose content
	// digest differs from the last recorded one.
	ModeIncremental Mode = "incremental"
)

// shouldCopy decides whether a file needs copying this run. Pure: it never
// mutates the digest map. Full mode always copies (the fresh digest is still
// recorded afterwards so the history stays current).
func shouldCopy(absPath, digest string, mode Mode, hashes map[string]string) bool {
	if mode == ModeFull {
		return true
	}
	prev, ok := hashes[absPath]
	return !ok || prev != digest
}
