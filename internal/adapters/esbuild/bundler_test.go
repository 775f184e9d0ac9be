package esbuild_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/witshim/internal/adapters/esbuild"
	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

var moduleBytes = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, data, domain.FilePerm))
}

const (
	namedImport   = "import { add } from './calc.wasm';\nconsole.log(add(1, 2));\n"
	defaultImport = "import calc from './calc.wasm';\nconsole.log(calc);\n"
)

func setup(t *testing.T, main string) (*esbuild.Bundler, *mocks.MockAssetLoader, string) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLoader := mocks.NewMockAssetLoader(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "main.ts"),
		[]byte(main))
	writeFile(t, filepath.Join(dir, "src", "calc.wasm"), moduleBytes)

	return esbuild.NewBundler(mockLoader, mockLogger), mockLoader, dir
}

func TestBundler_Bundle_SubstitutesComponent(t *testing.T) {
	bundler, mockLoader, dir := setup(t, namedImport)

	mockLoader.EXPECT().
		Load(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.LoadRequest) (domain.LoadResult, error) {
			assert.Equal(t, "calc.wasm", filepath.Base(req.Path))
			return domain.LoadResult{
				Loader:     domain.LoaderTS,
				Contents:   []byte("export function add(a: number, b: number): number { return String(a + b) + '-from-glue'; }\n"),
				ResolveDir: filepath.Dir(req.Path),
				Kind:       domain.KindComponent,
				Folder:     "calc-1234abcd",
			}, nil
		})

	res, err := bundler.Bundle(context.Background(), domain.BundleOptions{
		WorkingDir:  dir,
		EntryPoints: []string{"src/main.ts"},
		Outdir:      "dist",
		Platform:    "node",
		Format:      "esm",
	})
	require.NoError(t, err)

	require.Len(t, res.OutputFiles, 1)
	out, err := os.ReadFile(res.OutputFiles[0])
	require.NoError(t, err)
	assert.Contains(t, string(out), "-from-glue")
	assert.Equal(t, []string{filepath.Join(dir, "src", "calc.wasm")}, res.WasmInputs)
}

func TestBundler_Bundle_PassThroughUsesConfiguredLoader(t *testing.T) {
	bundler, mockLoader, dir := setup(t, defaultImport)

	mockLoader.EXPECT().
		Load(gomock.Any(), gomock.Any()).
		Return(domain.LoadResult{Loader: domain.LoaderDefault, Kind: domain.KindModule}, nil)

	res, err := bundler.Bundle(context.Background(), domain.BundleOptions{
		WorkingDir:  dir,
		EntryPoints: []string{"src/main.ts"},
		WasmLoader:  "binary",
	})
	require.NoError(t, err)
	require.Len(t, res.OutputFiles, 1)
	assert.Equal(t, filepath.Join(dir, "dist"), filepath.Dir(res.OutputFiles[0]))
}

func TestBundler_Bundle_LoadFailureKeepsCause(t *testing.T) {
	bundler, mockLoader, dir := setup(t, namedImport)

	mockLoader.EXPECT().
		Load(gomock.Any(), gomock.Any()).
		Return(domain.LoadResult{}, zerr.Wrap(domain.ErrTranspilerFailed, "transpile calc.wasm"))

	_, err := bundler.Bundle(context.Background(), domain.BundleOptions{
		WorkingDir:  dir,
		EntryPoints: []string{"src/main.ts"},
	})
	require.ErrorIs(t, err, domain.ErrBuildFailed)
	require.ErrorIs(t, err, domain.ErrTranspilerFailed)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	msgs, ok := zErr.Metadata()["errors"].(string)
	require.True(t, ok)
	assert.True(t, strings.Contains(msgs, "[plugin witshim]"))
}

func TestBundler_Bundle_NoEntryPoints(t *testing.T) {
	bundler, _, _ := setup(t, namedImport)

	_, err := bundler.Bundle(context.Background(), domain.BundleOptions{})
	require.ErrorIs(t, err, domain.ErrNoEntryPoints)
}

func TestBundler_Bundle_InvalidOptions(t *testing.T) {
	bundler, _, dir := setup(t, namedImport)

	_, err := bundler.Bundle(context.Background(), domain.BundleOptions{
		WorkingDir:  dir,
		EntryPoints: []string{"src/main.ts"},
		WasmLoader:  "ts",
	})
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name    string
		parse   func(string) error
		valid   []string
		invalid string
	}{
		{
			name:    "loader",
			parse:   func(s string) error { _, err := esbuild.ParseLoader(s); return err },
			valid:   []string{"", "file", "binary", "Base64", "copy", "dataurl", "empty"},
			invalid: "text",
		},
		{
			name:    "platform",
			parse:   func(s string) error { _, err := esbuild.ParsePlatform(s); return err },
			valid:   []string{"", "node", "browser", "neutral"},
			invalid: "deno",
		},
		{
			name:    "format",
			parse:   func(s string) error { _, err := esbuild.ParseFormat(s); return err },
			valid:   []string{"", "esm", "cjs", "iife"},
			invalid: "umd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range tt.valid {
				assert.NoError(t, tt.parse(v), v)
			}
			assert.ErrorIs(t, tt.parse(tt.invalid), domain.ErrInvalidConfig)
		})
	}
}
