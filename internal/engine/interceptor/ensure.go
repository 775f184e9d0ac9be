package interceptor

import (
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/zerr"
)

// ensure returns a complete ArtifactSet for key, transpiling only when no valid
// folder exists. Concurrent callers for the same folder share one generation, and
// other processes are kept out by the folder lock.
func (i *Interceptor) ensure(
	ctx context.Context,
	asset domain.Asset,
	key domain.CacheKey,
	outRoot string,
) (domain.ArtifactSet, error) {
	folder := key.Folder()
	flight := filepath.Join(outRoot, folder)

	led := false
	v, err, _ := i.flights.Do(flight, func() (any, error) {
		led = true
		return i.generate(ctx, asset, key, outRoot)
	})
	if err != nil {
		return domain.ArtifactSet{}, err
	}
	if !led {
		i.joinRecord(ctx, outRoot, folder, asset.Path)
	}

	set, _ := v.(domain.ArtifactSet)
	set.ExtraCores = slices.Clone(set.ExtraCores)
	return set, nil
}

func (i *Interceptor) generate(
	ctx context.Context,
	asset domain.Asset,
	key domain.CacheKey,
	outRoot string,
) (domain.ArtifactSet, error) {
	folder := key.Folder()
	set := domain.NewArtifactSet(filepath.Join(outRoot, folder), key.Name)

	lock, err := i.deps.Locker.Lock(ctx, outRoot, folder)
	if err != nil {
		return set, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			i.deps.Logger.Warn("failed to release lock for " + folder + ": " + err.Error())
		}
	}()

	now := i.now()

	if rec := i.cached(outRoot, key, set); rec != nil {
		i.deps.Logger.Debug("reuse " + folder + " for " + asset.Path)
		rec.LastUsedAt = now
		rec.AddAsset(asset.Path)
		i.putRecord(outRoot, *rec)

		set.ExtraCores = extraCores(key.Name, slices.Collect(maps.Keys(rec.Files)))
		return set, nil
	}

	if err := os.MkdirAll(outRoot, domain.DirPerm); err != nil {
		return set, zerr.With(errors.Join(domain.ErrFilesystemWriteFailed, err), "path", outRoot)
	}

	tmp, err := os.MkdirTemp(outRoot, domain.TempPrefix+folder+"-")
	if err != nil {
		return set, zerr.With(errors.Join(domain.ErrFilesystemWriteFailed, err), "path", outRoot)
	}
	defer os.RemoveAll(tmp) //nolint:errcheck // Temp dir is gone after a successful rename

	staged, err := i.transpile(ctx, asset, key, tmp)
	if err != nil {
		return set, err
	}

	files, err := i.deps.Hasher.HashDir(tmp)
	if err != nil {
		return set, err
	}

	if err := publish(tmp, set.Dir); err != nil {
		return set, err
	}

	rec := domain.GenerationRecord{
		Folder:     folder,
		Digest:     key.Digest,
		Files:      files,
		CreatedAt:  now,
		LastUsedAt: now,
	}
	rec.AddAsset(asset.Path)
	i.putRecord(outRoot, rec)

	set.ExtraCores = staged.ExtraCores
	return set, nil
}

// transpile runs the transpiler into dir and verifies what it produced.
func (i *Interceptor) transpile(
	ctx context.Context,
	asset domain.Asset,
	key domain.CacheKey,
	dir string,
) (domain.ArtifactSet, error) {
	ctx, span := i.deps.Tracer.Start(ctx, "transpile", ports.WithAttribute("folder", key.Folder()))
	defer span.End()

	staged := domain.NewArtifactSet(dir, key.Name)

	if err := i.deps.Transpiler.Transpile(ctx, asset.Path, dir); err != nil {
		span.RecordError(err)
		return staged, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		err = zerr.With(errors.Join(domain.ErrArtifactInvalid, err), "path", dir)
		span.RecordError(err)
		return staged, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	staged.ExtraCores = extraCores(key.Name, names)

	if err := i.deps.Verifier.Verify(ctx, staged); err != nil {
		span.RecordError(err)
		return staged, err
	}
	return staged, nil
}

// cached returns the record of a folder whose files still match their fingerprints.
func (i *Interceptor) cached(outRoot string, key domain.CacheKey, set domain.ArtifactSet) *domain.GenerationRecord {
	rec, err := i.deps.Store.Get(outRoot, key.Folder())
	if err != nil {
		i.deps.Logger.Warn("ignoring unreadable generation record: " + err.Error())
		return nil
	}
	if rec == nil || rec.Digest != key.Digest {
		return nil
	}

	for _, name := range set.Required() {
		if _, ok := rec.Files[name]; !ok {
			return nil
		}
	}

	files, err := i.deps.Hasher.HashDir(set.Dir)
	if err != nil {
		return nil
	}
	if !maps.Equal(files, rec.Files) {
		i.deps.Logger.Debug("fingerprints changed in " + set.Dir + ", regenerating")
		return nil
	}
	return rec
}

// joinRecord adds an asset that shared another caller's generation to the folder record.
func (i *Interceptor) joinRecord(ctx context.Context, outRoot, folder, assetPath string) {
	lock, err := i.deps.Locker.Lock(ctx, outRoot, folder)
	if err != nil {
		i.deps.Logger.Warn("failed to record " + assetPath + " in " + folder + ": " + err.Error())
		return
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			i.deps.Logger.Warn("failed to release lock for " + folder + ": " + err.Error())
		}
	}()

	rec, err := i.deps.Store.Get(outRoot, folder)
	if err != nil || rec == nil {
		return
	}
	if rec.AddAsset(assetPath) {
		i.putRecord(outRoot, *rec)
	}
}

func (i *Interceptor) putRecord(outRoot string, rec domain.GenerationRecord) {
	if err := i.deps.Store.Put(outRoot, rec); err != nil {
		i.deps.Logger.Warn("failed to record generation " + rec.Folder + ": " + err.Error())
	}
}

// publish replaces dst with the staged directory.
func publish(staged, dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return zerr.With(errors.Join(domain.ErrFilesystemWriteFailed, err), "path", dst)
	}
	if err := os.Rename(staged, dst); err != nil {
		return zerr.With(zerr.With(errors.Join(domain.ErrFilesystemWriteFailed, err), "from", staged), "to", dst)
	}
	return nil
}

// extraCores picks the secondary core binaries of name out of a flat file list.
func extraCores(name string, files []string) []string {
	var out []string
	for _, f := range files {
		if strings.Contains(f, "/") {
			continue
		}
		if domain.IsExtraCore(name, f) {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return out
}
