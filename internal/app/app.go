// Package app implements the application layer for witshim.
package app

import (
	"io"
	"os"
	"time"

	"go.trai.ch/witshim/internal/adapters/jco"
	"go.trai.ch/witshim/internal/adapters/wasmcheck"
	"go.trai.ch/witshim/internal/adapters/watcher"
	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/witshim/internal/engine/interceptor"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executor     ports.Executor
	logger       ports.Logger
	store        ports.GenerationStore
	hasher       ports.Hasher
	roots        ports.RootFinder
	locker       ports.Locker
	shims        ports.ShimWriter
	tracer       ports.Tracer

	settings   Settings
	transpiler ports.Transpiler
	stdout     io.Writer
	stderr     io.Writer
	isTerminal func() bool
	newWatcher func(skip ...string) (ports.Watcher, error)
	debounce   time.Duration
}

// Deps are the adapters the App is assembled from.
type Deps struct {
	ConfigLoader ports.ConfigLoader
	Executor     ports.Executor
	Logger       ports.Logger
	Store        ports.GenerationStore
	Hasher       ports.Hasher
	Roots        ports.RootFinder
	Locker       ports.Locker
	Shims        ports.ShimWriter
	Tracer       ports.Tracer
}

// New creates a new App instance.
func New(deps Deps) *App {
	a := &App{
		configLoader: deps.ConfigLoader,
		executor:     deps.Executor,
		logger:       deps.Logger,
		store:        deps.Store,
		hasher:       deps.Hasher,
		roots:        deps.Roots,
		locker:       deps.Locker,
		shims:        deps.Shims,
		tracer:       deps.Tracer,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		isTerminal:   stdoutIsTerminal,
		debounce:     watcher.DefaultDebounceWindow,
	}
	a.newWatcher = a.defaultWatcher
	return a
}

// Settings are invocation-wide overrides applied on top of witshim.yaml.
type Settings struct {
	// WorkDir is where the configuration search starts. Empty means the process working directory.
	WorkDir string
	// ConfigPath selects an explicit configuration file.
	ConfigPath string
	// OutDir replaces the configured output root.
	OutDir string
	// Transpiler replaces the configured transpiler command.
	Transpiler string
}

// Configure sets the overrides used by every subsequent operation.
func (a *App) Configure(s Settings) {
	a.settings = s
}

// WithTranspiler replaces the configured transpiler. This is primarily used for testing.
func (a *App) WithTranspiler(t ports.Transpiler) *App {
	a.transpiler = t
	return a
}

// WithOutput sets the streams a bundle run after build writes to.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithTerminal overrides terminal detection for the run step. This is primarily used for testing.
func (a *App) WithTerminal(isTerminal func() bool) *App {
	a.isTerminal = isTerminal
	return a
}

func (a *App) workDir() (string, error) {
	if a.settings.WorkDir != "" {
		return a.settings.WorkDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", zerr.Wrap(err, "failed to determine working directory")
	}
	return wd, nil
}

// loadConfig resolves the configuration for cwd and applies the overrides.
func (a *App) loadConfig(cwd string) (domain.Config, error) {
	var (
		cfg domain.Config
		err error
	)
	if a.settings.ConfigPath != "" {
		cfg, err = a.configLoader.LoadFile(a.settings.ConfigPath)
	} else {
		cfg, err = a.configLoader.Load(cwd)
	}
	if err != nil {
		return domain.Config{}, zerr.Wrap(err, "failed to load configuration")
	}

	if a.settings.OutDir != "" {
		cfg.OutDir = a.settings.OutDir
	}
	if a.settings.Transpiler != "" {
		cfg.Transpiler.Command = a.settings.Transpiler
	}
	return cfg, nil
}

// newInterceptor assembles the load pipeline for one resolved configuration.
func (a *App) newInterceptor(cfg domain.Config) *interceptor.Interceptor {
	transpiler := a.transpiler
	if transpiler == nil {
		transpiler = jco.New(a.executor, a.logger, cfg.Transpiler)
	}

	return interceptor.New(interceptor.Deps{
		Roots:      a.roots,
		Transpiler: transpiler,
		Verifier:   wasmcheck.New(cfg.VerifyCore),
		Store:      a.store,
		Hasher:     a.hasher,
		Locker:     a.locker,
		Shims:      a.shims,
		Tracer:     a.tracer,
		Logger:     a.logger,
	}, interceptor.Options{
		OutDir:  cfg.OutDir,
		Markers: cfg.Markers,
	})
}
