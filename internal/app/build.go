package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"go.trai.ch/witshim/internal/adapters/esbuild"
	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/zerr"
)

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	// EntryPoints replace the configured entry points. They are relative to the working directory.
	EntryPoints []string
	// Outdir replaces the configured output directory.
	Outdir string
	// Run executes the bundle after a successful build.
	Run bool
	// RunArgs are appended to the run command.
	RunArgs []string
}

// Build bundles the entry points with .wasm components substituted by their generated modules.
func (a *App) Build(ctx context.Context, opts BuildOptions) (domain.BundleResult, error) {
	cfg, bundleOpts, err := a.prepareBuild(opts)
	if err != nil {
		return domain.BundleResult{}, err
	}
	return a.build(ctx, cfg, bundleOpts, opts)
}

// prepareBuild resolves the configuration and the bundle options for one invocation.
func (a *App) prepareBuild(opts BuildOptions) (domain.Config, domain.BundleOptions, error) {
	cwd, err := a.workDir()
	if err != nil {
		return domain.Config{}, domain.BundleOptions{}, err
	}

	cfg, err := a.loadConfig(cwd)
	if err != nil {
		return domain.Config{}, domain.BundleOptions{}, err
	}

	bundleOpts := bundleOptions(cfg, cwd, opts)
	if len(bundleOpts.EntryPoints) == 0 {
		return domain.Config{}, domain.BundleOptions{}, domain.ErrNoEntryPoints
	}
	return cfg, bundleOpts, nil
}

func (a *App) build(
	ctx context.Context, cfg domain.Config, bundleOpts domain.BundleOptions, opts BuildOptions,
) (domain.BundleResult, error) {
	ctx, span := a.tracer.Start(ctx, "build", ports.WithAttribute("entry_points", bundleOpts.EntryPoints))
	defer span.End()

	bundler := esbuild.NewBundler(a.newInterceptor(cfg), a.logger)
	res, err := bundler.Bundle(ctx, bundleOpts)
	if err != nil {
		span.RecordError(err)
		return res, err
	}

	for _, out := range res.OutputFiles {
		a.logger.Debug("wrote " + relTo(bundleOpts.WorkingDir, out))
	}
	a.logger.Info(fmt.Sprintf("built %d file(s) into %s", len(res.OutputFiles), bundleOpts.Outdir))

	if !opts.Run {
		return res, nil
	}

	if err := a.runBundle(ctx, cfg, bundleOpts.WorkingDir, res, opts.RunArgs); err != nil {
		span.RecordError(err)
		return res, err
	}
	return res, nil
}

// bundleOptions merges the configured build section with the invocation flags. Entry
// points from the config file are relative to the file; flags are relative to cwd.
func bundleOptions(cfg domain.Config, cwd string, opts BuildOptions) domain.BundleOptions {
	b := cfg.Build
	workingDir := cwd
	entryPoints := b.EntryPoints
	if len(opts.EntryPoints) > 0 {
		entryPoints = opts.EntryPoints
	} else if cfg.Path != "" {
		workingDir = filepath.Dir(cfg.Path)
	}

	outdir := b.Outdir
	if opts.Outdir != "" {
		outdir = opts.Outdir
	}

	return domain.BundleOptions{
		WorkingDir:  workingDir,
		EntryPoints: slices.Clone(entryPoints),
		Outdir:      outdir,
		Platform:    b.Platform,
		Format:      b.Format,
		External:    slices.Clone(b.External),
		WasmLoader:  b.WasmLoader,
		Minify:      b.Minify,
		Sourcemap:   b.Sourcemap,
	}
}

// runBundle executes the first JavaScript output with the configured run command.
func (a *App) runBundle(ctx context.Context, cfg domain.Config, dir string, res domain.BundleResult, args []string) error {
	entry, ok := runnableOutput(res.OutputFiles)
	if !ok {
		return zerr.Wrap(domain.ErrRunFailed, "bundle produced no JavaScript output")
	}

	run := cfg.Run.Command
	if len(run) == 0 {
		run = []string{domain.DefaultRunCommand}
	}

	cmdArgs := make([]string, 0, len(run)+len(args))
	cmdArgs = append(cmdArgs, run[1:]...)
	cmdArgs = append(cmdArgs, entry)
	cmdArgs = append(cmdArgs, args...)

	cmd := domain.Command{
		Name: run[0],
		Args: cmdArgs,
		Dir:  dir,
		TTY:  a.isTerminal(),
	}

	ctx, span := a.tracer.Start(ctx, "run", ports.WithAttribute("argv", cmd.Argv()))
	defer span.End()

	a.logger.Info("running " + relTo(dir, entry))
	if err := a.executor.Execute(ctx, cmd, a.stdout, a.stderr); err != nil {
		span.RecordError(err)
		return zerr.With(errors.Join(domain.ErrRunFailed, err), "entry", entry)
	}
	return nil
}

func runnableOutput(files []string) (string, bool) {
	for _, f := range files {
		switch filepath.Ext(f) {
		case ".js", ".mjs", ".cjs":
			return f, true
		}
	}
	return "", false
}

func relTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
