package backup

import (
	"path"
	"path/filepath"
	"strings"
)

// excluded reports whether the file's slash-separated relative path matches
// any of the patterns. Evaluated independently per pattern, first match wins.
func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if matchPattern(rel, p) {
			return true
		}
	}
	return false
}

// matchPattern matches one shell-style pattern (*, ?, bracket classes)
// against the trailing path segments of rel, so "*.tmp" matches at any
// depth and "logs/*.log" matches any logs directory's files.
func matchPattern(rel, pattern string) bool {
	pseg := strings.Split(path.Clean(filepath.ToSlash(pattern)), "/")
	rseg := strings.Split(filepath.ToSlash(rel), "/")
	if len(pseg) == 0 || len(pseg) > len(rseg) {
		return false
	}
	rseg = rseg[len(rseg)-len(pseg):]
	for i := range pseg {
		ok, err := path.Match(pseg[i], rseg[i])
		if err != nil || !ok {
			return false
		}
	}
	return true
}
