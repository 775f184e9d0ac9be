package app

import (
	"context"

	"go.trai.ch/witshim/internal/core/domain"
)

// Transpile runs the load pipeline on a single asset, exactly as a build would.
func (a *App) Transpile(ctx context.Context, assetPath string) (domain.LoadResult, error) {
	cwd, err := a.workDir()
	if err != nil {
		return domain.LoadResult{}, err
	}

	cfg, err := a.loadConfig(cwd)
	if err != nil {
		return domain.LoadResult{}, err
	}

	return a.newInterceptor(cfg).Load(ctx, domain.LoadRequest{Path: assetPath})
}
