package domain

// BundleOptions describes one bundler invocation.
type BundleOptions struct {
	// WorkingDir is the absolute directory entry points are resolved against.
	WorkingDir  string
	EntryPoints []string
	Outdir      string
	Platform    string
	Format      string
	External    []string
	WasmLoader  string
	Minify      bool
	Sourcemap   bool
}

// BundleResult summarizes a finished bundle.
type BundleResult struct {
	// OutputFiles are the absolute paths written by the bundler.
	OutputFiles []string
	// WasmInputs are the absolute paths of the .wasm assets the bundle read.
	WasmInputs []string
	Warnings   []string
}
