// Package cas stores generation records for the content-addressed output root.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	wfs "go.trai.ch/witshim/internal/adapters/fs"
	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/zerr"
)

const recordExt = ".json"

var _ ports.GenerationStore = (*Store)(nil)

// Store implements ports.GenerationStore with one JSON file per generation folder
// under "<outRoot>/.witshim".
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the record for folder, or nil when none exists.
func (s *Store) Get(outRoot, folder string) (*domain.GenerationRecord, error) {
	filename := s.getFilename(outRoot, folder)
	//nolint:gosec // Path is constructed from the output root and a generation folder name
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(errors.Join(domain.ErrStoreReadFailed, err), "path", filename)
	}

	var rec domain.GenerationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, zerr.With(errors.Join(domain.ErrStoreUnmarshalFailed, err), "path", filename)
	}

	return &rec, nil
}

// Put stores rec, replacing any previous record for the same folder.
func (s *Store) Put(outRoot string, rec domain.GenerationRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Join(domain.ErrStoreMarshalFailed, err)
	}

	filename := s.getFilename(outRoot, rec.Folder)
	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrStoreWriteFailed, err), "path", filename)
	}

	if err := wfs.WriteFileAtomic(filename, data); err != nil {
		return zerr.With(errors.Join(domain.ErrStoreWriteFailed, err), "path", filename)
	}

	return nil
}

// List returns every readable record under outRoot sorted by folder name.
func (s *Store) List(outRoot string) ([]domain.GenerationRecord, error) {
	dir := domain.MetaDir(outRoot)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(errors.Join(domain.ErrStoreReadFailed, err), "path", dir)
	}

	records := make([]domain.GenerationRecord, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, recordExt) || strings.HasPrefix(name, ".") {
			continue
		}

		rec, err := s.Get(outRoot, strings.TrimSuffix(name, recordExt))
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, *rec)
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Folder < records[j].Folder })
	return records, nil
}

// Delete removes the record for folder.
func (s *Store) Delete(outRoot, folder string) error {
	filename := s.getFilename(outRoot, folder)
	if err := os.Remove(filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(errors.Join(domain.ErrStoreWriteFailed, err), "path", filename)
	}
	return nil
}

func (s *Store) getFilename(outRoot, folder string) string {
	return filepath.Join(domain.MetaDir(outRoot), folder+recordExt)
}
