package esbuild

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Bundler = (*Bundler)(nil)

// Bundler runs esbuild with the wasm plugin installed.
type Bundler struct {
	loader ports.AssetLoader
	logger ports.Logger
}

// NewBundler creates a Bundler that intercepts .wasm loads through loader.
func NewBundler(loader ports.AssetLoader, logger ports.Logger) *Bundler {
	return &Bundler{
		loader: loader,
		logger: logger,
	}
}

// Bundle builds the entry points and writes the output to disk.
func (b *Bundler) Bundle(ctx context.Context, opts domain.BundleOptions) (domain.BundleResult, error) {
	if len(opts.EntryPoints) == 0 {
		return domain.BundleResult{}, domain.ErrNoEntryPoints
	}

	buildOpts, err := b.buildOptions(opts)
	if err != nil {
		return domain.BundleResult{}, err
	}

	failures := &loadFailures{}
	buildOpts.Plugins = []api.Plugin{
		NewPlugin(b.loader, WithContext(ctx), WithErrorHandler(failures.add)),
	}

	result := api.Build(buildOpts)

	warnings := formatMessages(result.Warnings)
	for _, w := range warnings {
		b.logger.Warn(w)
	}

	if len(result.Errors) > 0 {
		return domain.BundleResult{Warnings: warnings}, buildError(result.Errors, failures.join())
	}
	if err := ctx.Err(); err != nil {
		return domain.BundleResult{Warnings: warnings}, zerr.Wrap(err, "build cancelled")
	}

	meta, err := parseMetafile(result.Metafile)
	if err != nil {
		return domain.BundleResult{Warnings: warnings}, zerr.Wrap(err, "failed to parse metafile")
	}

	return domain.BundleResult{
		OutputFiles: meta.outputFiles(buildOpts.AbsWorkingDir),
		WasmInputs:  meta.wasmInputs(buildOpts.AbsWorkingDir),
		Warnings:    warnings,
	}, nil
}

func (b *Bundler) buildOptions(opts domain.BundleOptions) (api.BuildOptions, error) {
	loader, err := ParseLoader(opts.WasmLoader)
	if err != nil {
		return api.BuildOptions{}, err
	}
	platform, err := ParsePlatform(opts.Platform)
	if err != nil {
		return api.BuildOptions{}, err
	}
	format, err := ParseFormat(opts.Format)
	if err != nil {
		return api.BuildOptions{}, err
	}

	workingDir := opts.WorkingDir
	if workingDir != "" {
		if workingDir, err = filepath.Abs(workingDir); err != nil {
			return api.BuildOptions{}, zerr.Wrap(err, "failed to resolve working directory")
		}
	}

	outdir := opts.Outdir
	if outdir == "" {
		outdir = domain.DefaultBuildOutdir
	}

	sourcemap := api.SourceMapNone
	if opts.Sourcemap {
		sourcemap = api.SourceMapLinked
	}

	return api.BuildOptions{
		AbsWorkingDir:     workingDir,
		EntryPoints:       opts.EntryPoints,
		Outdir:            outdir,
		Bundle:            true,
		Write:             true,
		Metafile:          true,
		Platform:          platform,
		Format:            format,
		External:          opts.External,
		Loader:            map[string]api.Loader{domain.WasmExt: loader},
		MinifyWhitespace:  opts.Minify,
		MinifyIdentifiers: opts.Minify,
		MinifySyntax:      opts.Minify,
		Sourcemap:         sourcemap,
		LogLevel:          api.LogLevelSilent,
	}, nil
}

func buildError(msgs []api.Message, cause error) error {
	err := zerr.Wrap(domain.ErrBuildFailed, "esbuild reported errors")
	if cause != nil {
		err = zerr.Wrap(errors.Join(domain.ErrBuildFailed, cause), "esbuild reported errors")
	}
	return zerr.With(err, "errors", strings.Join(formatMessages(msgs), "\n"))
}

func formatMessages(msgs []api.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		text := m.Text
		if m.PluginName != "" {
			text = "[plugin " + m.PluginName + "] " + text
		}
		if loc := m.Location; loc != nil {
			text = fmt.Sprintf("%s:%d:%d: %s", loc.File, loc.Line, loc.Column, text)
		}
		out = append(out, text)
	}
	return out
}

// loadFailures keeps the typed errors the plugin returned; esbuild only keeps their text.
type loadFailures struct {
	mu   sync.Mutex
	errs []error
}

func (f *loadFailures) add(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, zerr.With(err, "path", path))
}

func (f *loadFailures) join() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) == 0 {
		return nil
	}
	return errors.Join(f.errs...)
}
