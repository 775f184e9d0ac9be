package ports

import "go.trai.ch/witshim/internal/core/domain"

// GenerationStore persists retention metadata for generation folders.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type GenerationStore interface {
	// Get returns the record for folder under outRoot, or nil, nil if there is none.
	Get(outRoot, folder string) (*domain.GenerationRecord, error)

	// Put stores rec under outRoot.
	Put(outRoot string, rec domain.GenerationRecord) error

	// List returns every record under outRoot.
	List(outRoot string) ([]domain.GenerationRecord, error)

	// Delete removes the record for folder. Missing records are not an error.
	Delete(outRoot, folder string) error
}
