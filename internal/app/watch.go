package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/witshim/internal/adapters/watcher"
	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/zerr"
)

// Watch builds once and then rebuilds whenever a source below the working directory
// changes. Build failures are logged and watching continues. It returns when ctx ends.
func (a *App) Watch(ctx context.Context, opts BuildOptions) error {
	cfg, bundleOpts, err := a.prepareBuild(opts)
	if err != nil {
		return err
	}

	root := bundleOpts.WorkingDir
	filter := newWatchFilter(cfg, bundleOpts)

	w, err := a.newWatcher(filter.skipNames()...)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := w.Start(ctx, root); err != nil {
		return zerr.Wrap(err, "failed to start watching")
	}

	rebuild := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(a.debounce, func(paths []string) {
		select {
		case rebuild <- paths:
		default:
			// A rebuild is already queued; it will pick these changes up.
		}
	})
	defer debouncer.Stop()

	go func() {
		for ev := range w.Events() {
			if filter.ignored(ev.Path) {
				continue
			}
			debouncer.Add(ev.Path)
		}
	}()

	a.buildLogged(ctx, cfg, bundleOpts, opts)
	a.logger.Info("watching " + root + " for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-rebuild:
			a.logger.Info(fmt.Sprintf("%d file(s) changed, rebuilding", len(paths)))
			for _, p := range paths {
				a.logger.Debug("changed " + relTo(root, p))
			}
			a.buildLogged(ctx, cfg, bundleOpts, opts)
		}
	}
}

func (a *App) buildLogged(ctx context.Context, cfg domain.Config, bundleOpts domain.BundleOptions, opts BuildOptions) {
	if _, err := a.build(ctx, cfg, bundleOpts, opts); err != nil && ctx.Err() == nil {
		a.logger.Error(err)
	}
}

// WithWatcher replaces the file system watcher. This is primarily used for testing.
func (a *App) WithWatcher(w ports.Watcher) *App {
	a.newWatcher = func(...string) (ports.Watcher, error) { return w, nil }
	return a
}

// WithDebounce sets the quiet period between a change and the rebuild.
func (a *App) WithDebounce(window time.Duration) *App {
	a.debounce = window
	return a
}

func (a *App) defaultWatcher(skip ...string) (ports.Watcher, error) {
	return watcher.NewWatcher(a.logger, skip...)
}

// watchFilter drops events for files the build itself writes.
type watchFilter struct {
	outDir    string
	outPrefix string
	bundleDir string
}

func newWatchFilter(cfg domain.Config, bundleOpts domain.BundleOptions) watchFilter {
	outDir := cfg.OutDir
	if outDir == "" {
		outDir = domain.GenDirName
	}

	bundleDir := bundleOpts.Outdir
	if bundleDir == "" {
		bundleDir = domain.DefaultBuildOutdir
	}
	if !filepath.IsAbs(bundleDir) {
		bundleDir = filepath.Join(bundleOpts.WorkingDir, bundleDir)
	}

	f := watchFilter{bundleDir: filepath.Clean(bundleDir)}
	if filepath.IsAbs(outDir) {
		f.outPrefix = filepath.Clean(outDir)
	} else {
		f.outDir = filepath.Clean(outDir)
	}
	return f
}

// skipNames are directory names the watcher never descends into.
func (f watchFilter) skipNames() []string {
	names := []string{domain.MetaDirName, domain.LockDirName}
	if f.outDir != "" && !strings.ContainsRune(f.outDir, filepath.Separator) {
		names = append(names, f.outDir)
	}
	return names
}

func (f watchFilter) ignored(path string) bool {
	switch {
	case strings.HasSuffix(path, domain.WasmExt+domain.ShimSuffix):
		return true
	case within(path, f.bundleDir):
		return true
	case f.outPrefix != "" && within(path, f.outPrefix):
		return true
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(part, domain.TempPrefix) {
			return true
		}
	}
	if f.outDir != "" {
		needle := string(filepath.Separator) + f.outDir
		if strings.Contains(path, needle+string(filepath.Separator)) || strings.HasSuffix(path, needle) {
			return true
		}
	}
	return false
}

func within(path, dir string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}
