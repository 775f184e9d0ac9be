package domain

import "go.trai.ch/zerr"

var (
	// ErrFormatUnrecognized is reported for assets that are neither modules nor components.
	// It is informational: such assets are passed through untouched.
	ErrFormatUnrecognized = zerr.New("unrecognized wasm binary format")

	// ErrAssetReadFailed is returned when an asset cannot be read.
	ErrAssetReadFailed = zerr.New("failed to read asset")

	// ErrProjectRootNotFound is returned when no project marker exists above an asset.
	ErrProjectRootNotFound = zerr.New("project root not found")

	// ErrTranspilerFailed is returned when the transpiler exits with a non-zero status.
	ErrTranspilerFailed = zerr.New("transpiler invocation failed")

	// ErrTranspilerNotFound is returned when the transpiler executable is not on PATH.
	ErrTranspilerNotFound = zerr.New("transpiler executable not found")

	// ErrTranspilerTimeout is returned when the transpiler exceeds the configured timeout.
	ErrTranspilerTimeout = zerr.New("transpiler timed out")

	// ErrImportTokenNotFound is returned when the glue code lacks the core wasm import.
	ErrImportTokenNotFound = zerr.New("import token not found in glue code")

	// ErrArtifactInvalid is returned when the transpiler output is incomplete or corrupt.
	ErrArtifactInvalid = zerr.New("invalid transpiler output")

	// ErrFilesystemWriteFailed is returned when a generated file cannot be written.
	ErrFilesystemWriteFailed = zerr.New("failed to write file")

	// ErrRelativePathFailed is returned when the asset and output directories cannot be related.
	ErrRelativePathFailed = zerr.New("failed to resolve relative path")

	// ErrLockFailed is returned when the generation folder lock cannot be acquired.
	ErrLockFailed = zerr.New("failed to lock generation folder")

	// ErrStoreReadFailed is returned when a generation record cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read generation record")

	// ErrStoreUnmarshalFailed is returned when a generation record cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal generation record")

	// ErrStoreMarshalFailed is returned when a generation record cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to marshal generation record")

	// ErrStoreWriteFailed is returned when a generation record cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write generation record")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a config value is out of range.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrNoEntryPoints is returned when build is invoked without entry points.
	ErrNoEntryPoints = zerr.New("no entry points specified")

	// ErrBuildFailed is returned when the bundler reports errors.
	ErrBuildFailed = zerr.New("build failed")

	// ErrRunFailed is returned when running the bundled output fails.
	ErrRunFailed = zerr.New("run failed")

	// ErrPruneFailed is returned when a generation folder cannot be removed.
	ErrPruneFailed = zerr.New("failed to prune generation folder")
)
