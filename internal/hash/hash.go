// Package hash computes content digests used for change detection. The digest
// is a fingerprint, not a security boundary, so MD5 is sufficient and keeps
// old history files comparable.
package hash

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const chunkSize = 4096

// File returns the hex MD5 digest of the file's content, reading in
// fixed-size chunks so memory use is independent of file size.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
