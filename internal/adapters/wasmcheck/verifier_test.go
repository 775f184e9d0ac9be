package wasmcheck_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/witshim/internal/adapters/wasmcheck"
	"go.trai.ch/witshim/internal/core/domain"
)

// emptyModule is the smallest valid core module: magic plus version 1.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

// truncatedModule has a valid preamble followed by a section header with no body.
var truncatedModule = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00, 0x01, 0x05}

var component = []byte{0x00, 0x61, 0x73, 0x6D, 0x0D, 0x00, 0x01, 0x00}

func writeSet(t *testing.T, core []byte, skip string) domain.ArtifactSet {
	t.Helper()
	dir := t.TempDir()
	set := domain.NewArtifactSet(dir, "calc")

	files := map[string][]byte{
		domain.GlueFile("calc"):  []byte("export {};\n"),
		domain.CoreFile("calc"):  core,
		domain.TypesFile("calc"): []byte("export {};\n"),
	}
	for name, data := range files {
		if name == skip {
			continue
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, domain.FilePerm))
	}
	return set
}

func TestVerifier_Verify(t *testing.T) {
	tests := []struct {
		name    string
		compile bool
		core    []byte
		skip    string
		wantErr bool
	}{
		{name: "complete set", core: emptyModule},
		{name: "complete set compiled", compile: true, core: emptyModule},
		{name: "missing glue", core: emptyModule, skip: "calc.js", wantErr: true},
		{name: "missing types", core: emptyModule, skip: "calc.d.ts", wantErr: true},
		{name: "missing core", core: emptyModule, skip: "calc.core.wasm", wantErr: true},
		{name: "core is a component", core: component, wantErr: true},
		{name: "core is garbage", core: []byte("not wasm"), wantErr: true},
		{name: "truncated core passes sniffing", core: truncatedModule},
		{name: "truncated core fails compile", compile: true, core: truncatedModule, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := writeSet(t, tt.core, tt.skip)
			err := wasmcheck.New(tt.compile).Verify(context.Background(), set)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrArtifactInvalid)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestVerifier_ExtraCores(t *testing.T) {
	set := writeSet(t, emptyModule, "")
	set.ExtraCores = []string{"calc.core2.wasm"}

	err := wasmcheck.New(false).Verify(context.Background(), set)
	require.ErrorIs(t, err, domain.ErrArtifactInvalid, "listed extra core is missing")

	require.NoError(t, os.WriteFile(filepath.Join(set.Dir, "calc.core2.wasm"), emptyModule, domain.FilePerm))
	require.NoError(t, wasmcheck.New(true).Verify(context.Background(), set))
}
