package domain

import "time"

// Defaults applied when witshim.yaml leaves a value unset.
const (
	DefaultTranspiler        = "jco"
	DefaultTranspileTimeout  = 2 * time.Minute
	DefaultRetention         = 30 * 24 * time.Hour
	DefaultRunCommand        = "node"
	DefaultBuildOutdir       = "dist"
	DefaultBuildPlatform     = "node"
	DefaultBuildFormat       = "esm"
	DefaultPassthroughLoader = "file"
)

// Config is the resolved witshim configuration.
type Config struct {
	// Path is the config file the values were read from, empty when defaults are used.
	Path string

	Transpiler TranspilerConfig
	// OutDir is the generation output root, relative to each asset's project root.
	OutDir string
	// Markers are the file names that identify a project root.
	Markers []string
	// VerifyCore compiles generated core binaries before publishing them.
	VerifyCore bool
	// Retention is how long an unused generation folder is kept by prune.
	Retention time.Duration

	Build BuildConfig
	Run   RunConfig
}

// TranspilerConfig configures the external component transpiler.
type TranspilerConfig struct {
	Command string
	Args    []string
	// Timeout bounds a single invocation. Zero disables the limit.
	Timeout time.Duration
}

// BuildConfig configures the bundler.
type BuildConfig struct {
	EntryPoints []string
	Outdir      string
	Platform    string
	Format      string
	External    []string
	// WasmLoader is the host loader applied to non-component .wasm files.
	WasmLoader string
	Minify     bool
	Sourcemap  bool
}

// RunConfig configures how a bundle is executed after build --run.
type RunConfig struct {
	Command []string
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{
		Transpiler: TranspilerConfig{
			Command: DefaultTranspiler,
			Timeout: DefaultTranspileTimeout,
		},
		OutDir:    GenDirName,
		Markers:   DefaultMarkers(),
		Retention: DefaultRetention,
		Build: BuildConfig{
			Outdir:     DefaultBuildOutdir,
			Platform:   DefaultBuildPlatform,
			Format:     DefaultBuildFormat,
			WasmLoader: DefaultPassthroughLoader,
		},
		Run: RunConfig{
			Command: []string{DefaultRunCommand},
		},
	}
}
