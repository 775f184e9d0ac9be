package fs

import (
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ShimWriter = (*ShimWriter)(nil)

// ShimWriter writes "<asset>.d.ts" next to component assets.
type ShimWriter struct{}

// NewShimWriter creates a new ShimWriter.
func NewShimWriter() *ShimWriter {
	return &ShimWriter{}
}

// WriteShim replaces the shim for assetPath. The file is written to a temporary
// sibling and renamed into place so readers never observe a partial shim.
func (w *ShimWriter) WriteShim(assetPath string, contents []byte) error {
	target := domain.ShimPath(assetPath)
	if err := WriteFileAtomic(target, contents); err != nil {
		return zerr.With(errors.Join(domain.ErrFilesystemWriteFailed, err), "path", target)
	}
	return nil
}

// WriteFileAtomic writes data to path via a temporary file in the same directory.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
