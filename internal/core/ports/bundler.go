package ports

import (
	"context"

	"go.trai.ch/witshim/internal/core/domain"
)

// Bundler runs the host bundler with the component loader installed.
//
//go:generate mockgen -source=bundler.go -destination=mocks/mock_bundler.go -package=mocks
type Bundler interface {
	Bundle(ctx context.Context, opts domain.BundleOptions) (domain.BundleResult, error)
}
