package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/zerr"
)

// PruneOptions configuration for the Prune method.
type PruneOptions struct {
	// MaxAge overrides the configured retention. Zero keeps the configured value.
	MaxAge time.Duration
	// DryRun reports what would be removed without touching the disk.
	DryRun bool
}

// PruneReport lists the outcome of a prune.
type PruneReport struct {
	OutRoot string
	// Removed holds the folder names that were (or, in a dry run, would be) deleted.
	Removed []string
	// Kept is the number of generation folders left in place.
	Kept int
}

// Prune deletes generation folders that have not been used within the retention
// window, folders without a record and abandoned temp directories. Every folder is
// removed under its lock, so folders being generated are never touched.
func (a *App) Prune(ctx context.Context, opts PruneOptions) (PruneReport, error) {
	cwd, err := a.workDir()
	if err != nil {
		return PruneReport{}, err
	}

	cfg, err := a.loadConfig(cwd)
	if err != nil {
		return PruneReport{}, err
	}

	root, err := a.roots.Find(cwd, cfg.Markers)
	if err != nil {
		return PruneReport{}, err
	}

	maxAge := cfg.Retention
	if opts.MaxAge > 0 {
		maxAge = opts.MaxAge
	}

	report := PruneReport{OutRoot: a.newInterceptor(cfg).OutRoot(root)}

	entries, err := os.ReadDir(report.OutRoot)
	if errors.Is(err, os.ErrNotExist) {
		a.logger.Info("nothing to prune in " + report.OutRoot)
		return report, nil
	}
	if err != nil {
		return report, zerr.With(zerr.Wrap(err, "failed to list output root"), "path", report.OutRoot)
	}

	records, err := a.store.List(report.OutRoot)
	if err != nil {
		return report, err
	}
	byFolder := make(map[string]domain.GenerationRecord, len(records))
	for _, rec := range records {
		byFolder[rec.Folder] = rec
	}

	now := time.Now()
	var errs error

	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || name == domain.MetaDirName || name == domain.LockDirName {
			continue
		}

		rec, recorded := byFolder[name]
		temp := strings.HasPrefix(name, domain.TempPrefix)
		switch {
		case temp, !recorded:
		case rec.Expired(now, maxAge):
		default:
			report.Kept++
			continue
		}

		report.Removed = append(report.Removed, name)
		if opts.DryRun {
			continue
		}
		if err := a.removeFolder(ctx, report.OutRoot, name, temp, recorded); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	// Records whose folder is already gone.
	for folder := range byFolder {
		if _, err := os.Stat(filepath.Join(report.OutRoot, folder)); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		if !opts.DryRun {
			if err := a.store.Delete(report.OutRoot, folder); err != nil {
				errs = errors.Join(errs, err)
			}
		}
	}

	verb := "removed"
	if opts.DryRun {
		verb = "would remove"
	}
	a.logger.Info(fmt.Sprintf("%s %d folder(s), kept %d", verb, len(report.Removed), report.Kept))

	return report, errs
}

func (a *App) removeFolder(ctx context.Context, outRoot, name string, temp, recorded bool) error {
	path := filepath.Join(outRoot, name)

	folder := name
	if temp {
		folder = tempFolder(name)
	}

	lock, err := a.locker.Lock(ctx, outRoot, folder)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			a.logger.Warn("failed to release lock for " + folder + ": " + err.Error())
		}
	}()

	a.logger.Debug("removing " + path)
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(errors.Join(domain.ErrPruneFailed, err), "path", path)
	}
	if recorded {
		return a.store.Delete(outRoot, name)
	}
	return nil
}

// tempFolder returns the generation folder a ".tmp-<folder>-<random>" directory belongs to.
func tempFolder(name string) string {
	folder := strings.TrimPrefix(name, domain.TempPrefix)
	if i := strings.LastIndexByte(folder, '-'); i > 0 {
		return folder[:i]
	}
	return folder
}
