package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher fingerprints files with xxhash.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

// HashDir fingerprints every file below dir. Keys are slash-separated relative paths,
// values are 16-digit hex xxhash sums.
func (h *Hasher) HashDir(dir string) (map[string]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to stat directory"), "path", dir)
	}

	sums := make(map[string]string)
	for path := range h.walker.WalkFiles(dir, nil) {
		sum, err := h.ComputeFileHash(path)
		if err != nil {
			return nil, err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to relativize path"), "path", path)
		}
		sums[filepath.ToSlash(rel)] = fmt.Sprintf("%016x", sum)
	}

	return sums, nil
}
