package ports

import (
	"context"

	"go.trai.ch/witshim/internal/core/domain"
)

// AssetLoader handles one intercepted asset load.
//
//go:generate mockgen -source=loader.go -destination=mocks/mock_loader.go -package=mocks
type AssetLoader interface {
	Load(ctx context.Context, req domain.LoadRequest) (domain.LoadResult, error)
}
