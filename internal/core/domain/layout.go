package domain

import "path/filepath"

const (
	// WasmExt is the extension of intercepted assets.
	WasmExt = ".wasm"

	// GenDirName is the default output root for generated artifacts.
	GenDirName = "gen-ts"

	// MetaDirName holds generation records inside the output root.
	MetaDirName = ".witshim"

	// LockDirName holds per-folder lock files inside the output root.
	LockDirName = ".locks"

	// TempPrefix prefixes in-progress generation directories.
	TempPrefix = ".tmp-"

	// ConfigFileName is the name of the optional configuration file.
	ConfigFileName = "witshim.yaml"

	// ShimSuffix is appended to an asset path to form its type shim.
	ShimSuffix = ".d.ts"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultMarkers are the files that identify a project root.
func DefaultMarkers() []string {
	return []string{"package.json", "deno.json", "deno.jsonc", ConfigFileName}
}

// GlueFile returns the generated glue module name for an asset.
func GlueFile(name string) string {
	return name + ".js"
}

// CoreFile returns the generated core binary name for an asset.
func CoreFile(name string) string {
	return name + ".core.wasm"
}

// TypesFile returns the generated declaration file name for an asset.
func TypesFile(name string) string {
	return name + ".d.ts"
}

// ShimPath returns the declaration shim written next to an asset.
func ShimPath(assetPath string) string {
	return assetPath + ShimSuffix
}

// MetaDir returns the generation record directory under an output root.
func MetaDir(outRoot string) string {
	return filepath.Join(outRoot, MetaDirName)
}

// LockDir returns the lock directory under an output root.
func LockDir(outRoot string) string {
	return filepath.Join(outRoot, LockDirName)
}
