// Package interceptor turns intercepted .wasm loads into module substitutions.
package interceptor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var _ ports.AssetLoader = (*Interceptor)(nil)

// Options configures where generated artifacts are placed.
type Options struct {
	// OutDir is the output root. A relative value is joined to each asset's project root.
	OutDir string
	// Markers identify a project root. Empty means domain.DefaultMarkers.
	Markers []string
}

// Deps are the ports the Interceptor drives.
type Deps struct {
	Roots      ports.RootFinder
	Transpiler ports.Transpiler
	Verifier   ports.ArtifactVerifier
	Store      ports.GenerationStore
	Hasher     ports.Hasher
	Locker     ports.Locker
	Shims      ports.ShimWriter
	Tracer     ports.Tracer
	Logger     ports.Logger
}

// Interceptor handles one load event per asset. It is safe for concurrent use;
// the only shared state is the in-flight generation group.
type Interceptor struct {
	deps Deps
	opts Options
	now  func() time.Time

	flights singleflight.Group
}

// New creates an Interceptor.
func New(deps Deps, opts Options) *Interceptor {
	if opts.OutDir == "" {
		opts.OutDir = domain.GenDirName
	}
	return &Interceptor{
		deps: deps,
		opts: opts,
		now:  time.Now,
	}
}

// Load classifies the asset and, for components, returns the rewritten glue module.
// Any other binary is passed through with its original bytes.
func (i *Interceptor) Load(ctx context.Context, req domain.LoadRequest) (domain.LoadResult, error) {
	path, err := filepath.Abs(req.Path)
	if err != nil {
		return domain.LoadResult{}, zerr.With(errors.Join(domain.ErrAssetReadFailed, err), "asset", req.Path)
	}

	ctx, span := i.deps.Tracer.Start(ctx, "load", ports.WithAttribute("asset", path))
	defer span.End()

	res, err := i.load(ctx, path, span)
	if err != nil {
		span.RecordError(err)
		return domain.LoadResult{}, zerr.With(zerr.Wrap(err, "load "+filepath.Base(path)), "asset", path)
	}
	return res, nil
}

func (i *Interceptor) load(ctx context.Context, path string, span ports.Span) (domain.LoadResult, error) {
	content, err := os.ReadFile(path) //nolint:gosec // Path comes from the bundler
	if err != nil {
		return domain.LoadResult{}, errors.Join(domain.ErrAssetReadFailed, err)
	}

	asset := domain.NewAsset(path, content)
	span.SetAttribute("kind", asset.Kind.String())

	switch asset.Kind {
	case domain.KindComponent:
	case domain.KindModule:
		i.deps.Logger.Debug("pass through core module " + path)
		return passThrough(asset), nil
	default:
		i.deps.Logger.Debug(domain.ErrFormatUnrecognized.Error() + ", passing through " + path)
		return passThrough(asset), nil
	}

	root, err := i.deps.Roots.Find(asset.Dir(), i.opts.Markers)
	if err != nil {
		return domain.LoadResult{}, err
	}
	outRoot := i.outRoot(root)

	key := domain.DeriveCacheKey(asset.Name(), content)
	span.SetAttribute("folder", key.Folder())

	set, err := i.ensure(ctx, asset, key, outRoot)
	if err != nil {
		return domain.LoadResult{}, err
	}

	relDir, err := domain.RelativeImportDir(asset.Dir(), set.Dir)
	if err != nil {
		return domain.LoadResult{}, err
	}

	glue, err := i.rewrite(ctx, set, relDir)
	if err != nil {
		return domain.LoadResult{}, err
	}

	if err := i.writeShim(ctx, asset, relDir); err != nil {
		return domain.LoadResult{}, err
	}

	return domain.LoadResult{
		Loader:     domain.LoaderTS,
		Contents:   glue,
		ResolveDir: asset.Dir(),
		WatchFiles: []string{path},
		Kind:       asset.Kind,
		Folder:     key.Folder(),
	}, nil
}

func passThrough(asset domain.Asset) domain.LoadResult {
	return domain.LoadResult{
		Loader:   domain.LoaderDefault,
		Contents: asset.Content,
		Kind:     asset.Kind,
	}
}

// OutRoot returns the output root used for assets under the project root.
func (i *Interceptor) OutRoot(root string) string {
	return i.outRoot(root)
}

func (i *Interceptor) outRoot(root string) string {
	if filepath.IsAbs(i.opts.OutDir) {
		return filepath.Clean(i.opts.OutDir)
	}
	return filepath.Join(root, i.opts.OutDir)
}

// rewrite reads the glue fresh from the folder and points its core imports at relDir.
func (i *Interceptor) rewrite(ctx context.Context, set domain.ArtifactSet, relDir string) ([]byte, error) {
	_, span := i.deps.Tracer.Start(ctx, "rewrite", ports.WithAttribute("rel_dir", relDir))
	defer span.End()

	glue, err := os.ReadFile(set.Glue())
	if err != nil {
		err = zerr.With(errors.Join(domain.ErrArtifactInvalid, err), "file", set.Glue())
		span.RecordError(err)
		return nil, err
	}

	out, err := domain.RewriteImport(glue, domain.CoreFile(set.Name), relDir)
	if err != nil {
		span.RecordError(err)
		return nil, zerr.With(err, "file", set.Glue())
	}

	for _, extra := range set.ExtraCores {
		next, err := domain.RewriteImport(out, extra, relDir)
		if errors.Is(err, domain.ErrImportTokenNotFound) {
			continue
		}
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		out = next
	}

	return out, nil
}

func (i *Interceptor) writeShim(ctx context.Context, asset domain.Asset, relDir string) error {
	_, span := i.deps.Tracer.Start(ctx, "shim", ports.WithAttribute("path", domain.ShimPath(asset.Path)))
	defer span.End()

	if err := i.deps.Shims.WriteShim(asset.Path, domain.TypeShim(relDir, asset.Name())); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
