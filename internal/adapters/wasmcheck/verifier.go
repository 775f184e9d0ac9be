// Package wasmcheck verifies transpiler output before it is published.
package wasmcheck

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/tetratelabs/wazero"
	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactVerifier = (*Verifier)(nil)

// Verifier checks that an ArtifactSet is complete and that its core binaries are
// core WebAssembly modules. With compile enabled each core is also compiled by wazero.
type Verifier struct {
	compile bool
}

// New creates a Verifier.
func New(compile bool) *Verifier {
	return &Verifier{compile: compile}
}

// Verify returns domain.ErrArtifactInvalid describing the first problem found.
func (v *Verifier) Verify(ctx context.Context, set domain.ArtifactSet) error {
	for _, name := range set.Required() {
		path := filepath.Join(set.Dir, name)
		info, err := os.Stat(path)
		if err != nil {
			return zerr.With(errors.Join(domain.ErrArtifactInvalid, err), "file", path)
		}
		if !info.Mode().IsRegular() {
			return zerr.With(zerr.Wrap(domain.ErrArtifactInvalid, "not a regular file"), "file", path)
		}
	}

	cores := make([]string, 0, 1+len(set.ExtraCores))
	cores = append(cores, set.Core())
	for _, extra := range set.ExtraCores {
		cores = append(cores, filepath.Join(set.Dir, extra))
	}

	var runtime wazero.Runtime
	if v.compile {
		runtime = wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
		defer runtime.Close(ctx) //nolint:errcheck // Best effort close in defer
	}

	for _, core := range cores {
		if err := checkCore(ctx, runtime, core); err != nil {
			return err
		}
	}

	return nil
}

func checkCore(ctx context.Context, runtime wazero.Runtime, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // Path is inside the generation folder
	if err != nil {
		return zerr.With(errors.Join(domain.ErrArtifactInvalid, err), "file", path)
	}

	if kind := domain.DetectKind(data); kind != domain.KindModule {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrArtifactInvalid, "core binary is not a wasm module"),
			"file", path), "kind", kind.String())
	}

	if runtime == nil {
		return nil
	}

	compiled, err := runtime.CompileModule(ctx, data)
	if err != nil {
		return zerr.With(errors.Join(domain.ErrArtifactInvalid, err), "file", path)
	}
	return compiled.Close(ctx)
}
