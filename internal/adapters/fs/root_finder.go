package fs

import (
	"path/filepath"

	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.RootFinder = (*RootFinder)(nil)

// RootFinder walks up the directory tree looking for project marker files.
type RootFinder struct {
	fs FileSystem
}

// NewRootFinder creates a RootFinder over the given filesystem.
func NewRootFinder(fsys FileSystem) *RootFinder {
	return &RootFinder{fs: fsys}
}

// Find returns the nearest directory at or above start that contains one of markers.
// Markers are checked in order inside each directory; the nearest directory wins.
func (r *RootFinder) Find(start string, markers []string) (string, error) {
	if len(markers) == 0 {
		markers = domain.DefaultMarkers()
	}

	currentDir := filepath.Clean(start)
	for {
		for _, marker := range markers {
			info, err := r.fs.Stat(filepath.Join(currentDir, marker))
			if err == nil && !info.IsDir() {
				return currentDir, nil
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrProjectRootNotFound, "find project root"), "start", start)
}
