// Package config provides the configuration loader for witshim.
package config

import (
	"errors"
	"path/filepath"
	"time"

	wfs "go.trai.ch/witshim/internal/adapters/fs"
	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// SchemaVersion is the configuration format this loader understands. An absent
// version means the current one.
const SchemaVersion = "1"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	FS     wfs.FileSystem
}

// NewLoader creates a new Loader with the given logger and filesystem.
func NewLoader(logger ports.Logger, fsys wfs.FileSystem) *Loader {
	return &Loader{Logger: logger, FS: fsys}
}

// Load searches cwd and its parents for witshim.yaml and resolves it over the defaults.
// Without a config file the defaults are returned.
func (l *Loader) Load(cwd string) (domain.Config, error) {
	configPath, found := l.findConfiguration(cwd)
	if !found {
		l.Logger.Debug("no " + domain.ConfigFileName + " found, using defaults")
		return domain.DefaultConfig(), nil
	}

	return l.LoadFile(configPath)
}

// LoadFile reads the configuration at configPath.
func (l *Loader) LoadFile(configPath string) (domain.Config, error) {
	var file File
	if err := l.readAndUnmarshalYAML(configPath, &file); err != nil {
		return domain.Config{}, err
	}

	cfg, err := resolve(&file)
	if err != nil {
		return domain.Config{}, zerr.With(err, "file", configPath)
	}
	cfg.Path = configPath

	l.Logger.Debug("loaded configuration from " + configPath)
	return cfg, nil
}

func (l *Loader) findConfiguration(cwd string) (string, bool) {
	currentDir := filepath.Clean(cwd)

	for {
		configPath := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := l.FS.Stat(configPath); err == nil && !info.IsDir() {
			return configPath, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", false
		}
		currentDir = parentDir
	}
}

func (l *Loader) readAndUnmarshalYAML(configPath string, target *File) error {
	data, err := l.FS.ReadFile(configPath)
	if err != nil {
		return zerr.With(errors.Join(domain.ErrConfigReadFailed, err), "file", configPath)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.With(errors.Join(domain.ErrConfigParseFailed, err), "file", configPath)
	}

	return nil
}

// resolve overlays the values set in file onto domain.DefaultConfig.
func resolve(file *File) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	if file.Version != "" && file.Version != SchemaVersion {
		return domain.Config{}, zerr.With(zerr.With(
			zerr.Wrap(domain.ErrInvalidConfig, "unsupported configuration version"),
			"version", file.Version), "supported", SchemaVersion)
	}

	if t := file.Transpiler; t != nil {
		if t.Command != "" {
			cfg.Transpiler.Command = t.Command
		}
		cfg.Transpiler.Args = t.Args
		if t.Timeout != "" {
			d, err := parseDuration("transpiler.timeout", t.Timeout)
			if err != nil {
				return domain.Config{}, err
			}
			cfg.Transpiler.Timeout = d
		}
	}

	if file.OutDir != "" {
		cfg.OutDir = file.OutDir
	}
	if len(file.Markers) > 0 {
		cfg.Markers = file.Markers
	}
	if file.VerifyCore != nil {
		cfg.VerifyCore = *file.VerifyCore
	}

	if r := file.Retention; r != nil && r.MaxAge != "" {
		d, err := parseDuration("retention.max_age", r.MaxAge)
		if err != nil {
			return domain.Config{}, err
		}
		cfg.Retention = d
	}

	if b := file.Build; b != nil {
		resolveBuild(&cfg.Build, b)
	}

	if r := file.Run; r != nil && len(r.Command) > 0 {
		cfg.Run.Command = r.Command
	}

	return cfg, nil
}

func resolveBuild(cfg *domain.BuildConfig, b *BuildDTO) {
	cfg.EntryPoints = b.EntryPoints
	cfg.External = b.External
	cfg.Minify = b.Minify
	cfg.Sourcemap = b.Sourcemap

	if b.Outdir != "" {
		cfg.Outdir = b.Outdir
	}
	if b.Platform != "" {
		cfg.Platform = b.Platform
	}
	if b.Format != "" {
		cfg.Format = b.Format
	}
	if b.WasmLoader != "" {
		cfg.WasmLoader = b.WasmLoader
	}
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, zerr.With(zerr.With(errors.Join(domain.ErrInvalidConfig, err), "key", key), "value", value)
	}
	if d < 0 {
		return 0, zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "duration must not be negative"), "key", key), "value", value)
	}
	return d, nil
}
