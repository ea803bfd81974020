package eval

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/zeebo/blake3"
)

// FileDigest returns the blake3 digest of a file's contents, prefixed
// with the algorithm name. Reports carry these digests so a result can
// be tied back to the exact dockerfile and rubric that produced it.
func FileDigest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s for digest: %w", path, err)
	}
	sum := blake3.Sum256(data)
	return "blake3:" + hex.EncodeToString(sum[:]), nil
}
