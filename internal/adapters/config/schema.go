package config

// File represents the structure of the witshim.yaml configuration file.
type File struct {
	Version    string         `yaml:"version"`
	Transpiler *TranspilerDTO `yaml:"transpiler"`
	OutDir     string         `yaml:"out_dir"`
	Markers    []string       `yaml:"markers"`
	VerifyCore *bool          `yaml:"verify_core"`
	Retention  *RetentionDTO  `yaml:"retention"`
	Build      *BuildDTO      `yaml:"build"`
	Run        *RunDTO        `yaml:"run"`
}

// TranspilerDTO configures the external transpiler.
type TranspilerDTO struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Timeout string   `yaml:"timeout"`
}

// RetentionDTO configures pruning of generation folders.
type RetentionDTO struct {
	MaxAge string `yaml:"max_age"`
}

// BuildDTO configures the bundler.
type BuildDTO struct {
	EntryPoints []string `yaml:"entry_points"`
	Outdir      string   `yaml:"outdir"`
	Platform    string   `yaml:"platform"`
	Format      string   `yaml:"format"`
	External    []string `yaml:"external"`
	WasmLoader  string   `yaml:"wasm_loader"`
	Minify      bool     `yaml:"minify"`
	Sourcemap   bool     `yaml:"sourcemap"`
}

// RunDTO configures how a bundle is executed.
type RunDTO struct {
	Command []string `yaml:"command"`
}
