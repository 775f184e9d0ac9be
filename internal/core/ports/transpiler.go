package ports

import "context"

// Transpiler converts a component binary into importable glue.
//
//go:generate mockgen -source=transpiler.go -destination=mocks/mock_transpiler.go -package=mocks
type Transpiler interface {
	// Transpile writes <name>.js, <name>.core.wasm and <name>.d.ts for assetPath into outDir.
	// It blocks until the external process exits.
	Transpile(ctx context.Context, assetPath, outDir string) error
}
