package ports

import (
	"context"

	"go.trai.ch/witshim/internal/core/domain"
)

// ArtifactVerifier checks transpiler output before it is published.
//
//go:generate mockgen -source=verifier.go -destination=mocks/mock_verifier.go -package=mocks
type ArtifactVerifier interface {
	// Verify returns domain.ErrArtifactInvalid when set is incomplete or corrupt.
	Verify(ctx context.Context, set domain.ArtifactSet) error
}
