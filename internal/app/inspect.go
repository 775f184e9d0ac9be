package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// InspectResult describes how a file would be handled by a build.
type InspectResult struct {
	Path   string
	Kind   domain.Kind
	Size   int
	Digest string
	// Folder is the generation folder a component maps to.
	Folder string
	// OutRoot is the output root the folder lives in, empty when no project root was found.
	OutRoot string
	// Generated reports whether a recorded generation already exists for the folder.
	Generated bool
	// Assets are the recorded sources that resolved to the folder.
	Assets []string
}

// Inspect classifies each file concurrently. Results keep the order of paths.
func (a *App) Inspect(ctx context.Context, paths []string) ([]InspectResult, error) {
	cwd, err := a.workDir()
	if err != nil {
		return nil, err
	}

	cfg, err := a.loadConfig(cwd)
	if err != nil {
		return nil, err
	}
	icpt := a.newInterceptor(cfg)

	results := make([]InspectResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			path := p
			if !filepath.IsAbs(path) {
				path = filepath.Join(cwd, path)
			}

			content, err := os.ReadFile(path) //nolint:gosec // Path is a user supplied argument
			if err != nil {
				return zerr.With(errors.Join(domain.ErrAssetReadFailed, err), "asset", path)
			}

			asset := domain.NewAsset(path, content)
			key := domain.DeriveCacheKey(asset.Name(), content)
			res := InspectResult{
				Path:   path,
				Kind:   asset.Kind,
				Size:   len(content),
				Digest: key.Digest,
			}

			if asset.Kind == domain.KindComponent {
				res.Folder = key.Folder()
				root, err := a.roots.Find(asset.Dir(), cfg.Markers)
				switch {
				case errors.Is(err, domain.ErrProjectRootNotFound):
				case err != nil:
					return err
				default:
					res.OutRoot = icpt.OutRoot(root)
					rec, err := a.store.Get(res.OutRoot, res.Folder)
					if err != nil {
						return err
					}
					res.Generated = rec != nil && rec.Digest == key.Digest
					if res.Generated {
						res.Assets = rec.Assets
					}
				}
			}

			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
