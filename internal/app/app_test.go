package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/witshim/internal/adapters/cas"
	"go.trai.ch/witshim/internal/adapters/config"
	"go.trai.ch/witshim/internal/adapters/fs"
	"go.trai.ch/witshim/internal/adapters/lock"
	"go.trai.ch/witshim/internal/adapters/shell"
	"go.trai.ch/witshim/internal/adapters/telemetry"
	"go.trai.ch/witshim/internal/app"
	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

var (
	componentBytes = []byte{0x00, 0x61, 0x73, 0x6D, 0x0D, 0x00, 0x01, 0x00, 0x2A}
	moduleBytes    = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
)

type fakeJco struct {
	calls atomic.Int32
}

func (f *fakeJco) Transpile(_ context.Context, assetPath, outDir string) error {
	f.calls.Add(1)
	name := domain.AssetName(assetPath)
	files := map[string]string{
		domain.GlueFile(name): "export function add(a, b) { return 'sum:' + (a + b); }\n" +
			"export const coreUrl = new URL('./" + domain.CoreFile(name) + "', import.meta.url);\n",
		domain.CoreFile(name):  string(moduleBytes),
		domain.TypesFile(name): "export function add(a: number, b: number): string;\n",
	}
	for file, data := range files {
		if err := os.WriteFile(filepath.Join(outDir, file), []byte(data), domain.FilePerm); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(data), domain.FilePerm))
}

type fixture struct {
	root   string
	jco    *fakeJco
	store  *cas.Store
	app    *app.App
	stdout *bytes.Buffer
}

func newFixture(t *testing.T, yaml string) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), "{}")
	if yaml != "" {
		writeFile(t, filepath.Join(root, domain.ConfigFileName), yaml)
	}

	f := &fixture{
		root:   root,
		jco:    &fakeJco{},
		store:  cas.NewStore(),
		stdout: &bytes.Buffer{},
	}

	f.app = app.New(app.Deps{
		ConfigLoader: config.NewLoader(mockLogger, fs.NewOSFS()),
		Executor:     shell.NewExecutor(mockLogger),
		Logger:       mockLogger,
		Store:        f.store,
		Hasher:       fs.NewHasher(fs.NewWalker()),
		Roots:        fs.NewRootFinder(fs.NewOSFS()),
		Locker:       lock.NewLocker(),
		Shims:        fs.NewShimWriter(),
		Tracer:       telemetry.NewNoOpTracer(),
	}).
		WithTranspiler(f.jco).
		WithOutput(f.stdout, &bytes.Buffer{}).
		WithTerminal(func() bool { return false })
	f.app.Configure(app.Settings{WorkDir: root})

	return f
}

func (f *fixture) outRoot() string {
	return filepath.Join(f.root, domain.GenDirName)
}

const buildYAML = `
build:
  entry_points: [src/main.ts]
  outdir: dist
run:
  command: [cat]
`

func writeSources(t *testing.T, root string) {
	t.Helper()
	writeFile(t, filepath.Join(root, "src", "main.ts"),
		"import { add, coreUrl } from './calc.wasm';\nconsole.log(add(1, 2), coreUrl);\n")
	writeFile(t, filepath.Join(root, "src", "calc.wasm"), string(componentBytes))
}

func TestApp_Build(t *testing.T) {
	f := newFixture(t, buildYAML)
	writeSources(t, f.root)

	res, err := f.app.Build(context.Background(), app.BuildOptions{})
	require.NoError(t, err)

	require.Equal(t, []string{filepath.Join(f.root, "dist", "main.js")}, res.OutputFiles)
	assert.Equal(t, []string{filepath.Join(f.root, "src", "calc.wasm")}, res.WasmInputs)

	out, err := os.ReadFile(res.OutputFiles[0])
	require.NoError(t, err)
	folder := domain.DeriveCacheKey("calc", componentBytes).Folder()
	assert.Contains(t, string(out), "sum:")
	assert.Contains(t, string(out), "../gen-ts/"+folder+"/calc.core.wasm")

	shim, err := os.ReadFile(filepath.Join(f.root, "src", "calc.wasm.d.ts"))
	require.NoError(t, err)
	assert.Equal(t, "export * from '../gen-ts/"+folder+"/calc.js';\n", string(shim))
	assert.Equal(t, int32(1), f.jco.calls.Load())
}

func TestApp_Build_FlagsOverrideConfig(t *testing.T) {
	f := newFixture(t, buildYAML)
	writeSources(t, f.root)

	res, err := f.app.Build(context.Background(), app.BuildOptions{
		EntryPoints: []string{"src/main.ts"},
		Outdir:      "out",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(f.root, "out", "main.js")}, res.OutputFiles)
}

func TestApp_Build_Run(t *testing.T) {
	f := newFixture(t, buildYAML)
	writeSources(t, f.root)

	_, err := f.app.Build(context.Background(), app.BuildOptions{Run: true})
	require.NoError(t, err)
	assert.Contains(t, f.stdout.String(), "sum:")
}

func TestApp_Build_RunFailure(t *testing.T) {
	f := newFixture(t, "build:\n  entry_points: [src/main.ts]\nrun:\n  command: [sh, -c, 'exit 4']\n")
	writeSources(t, f.root)

	_, err := f.app.Build(context.Background(), app.BuildOptions{Run: true})
	require.ErrorIs(t, err, domain.ErrRunFailed)
}

func TestApp_Build_NoEntryPoints(t *testing.T) {
	f := newFixture(t, "")

	_, err := f.app.Build(context.Background(), app.BuildOptions{})
	require.ErrorIs(t, err, domain.ErrNoEntryPoints)
}

func TestApp_Build_InvalidConfig(t *testing.T) {
	f := newFixture(t, "transpiler:\n  timeout: soon\n")

	_, err := f.app.Build(context.Background(), app.BuildOptions{EntryPoints: []string{"main.ts"}})
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestApp_Transpile(t *testing.T) {
	f := newFixture(t, "")
	writeSources(t, f.root)

	res, err := f.app.Transpile(context.Background(), filepath.Join(f.root, "src", "calc.wasm"))
	require.NoError(t, err)
	assert.True(t, res.Substituted())
	assert.Contains(t, string(res.Contents), "'../gen-ts/"+res.Folder+"/calc.core.wasm'")
}

func TestApp_Transpile_OutDirOverride(t *testing.T) {
	f := newFixture(t, "")
	writeSources(t, f.root)
	f.app.Configure(app.Settings{WorkDir: f.root, OutDir: ".cache/wasm"})

	res, err := f.app.Transpile(context.Background(), filepath.Join(f.root, "src", "calc.wasm"))
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(f.root, ".cache", "wasm", res.Folder))
}

func TestApp_Inspect(t *testing.T) {
	f := newFixture(t, "")
	writeSources(t, f.root)
	writeFile(t, filepath.Join(f.root, "core.wasm"), string(moduleBytes))
	writeFile(t, filepath.Join(f.root, "notes.txt"), "hello")

	paths := []string{"src/calc.wasm", "core.wasm", "notes.txt"}

	results, err := f.app.Inspect(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, domain.KindComponent, results[0].Kind)
	assert.Equal(t, domain.DeriveCacheKey("calc", componentBytes).Folder(), results[0].Folder)
	assert.Equal(t, f.outRoot(), results[0].OutRoot)
	assert.False(t, results[0].Generated)
	assert.Equal(t, domain.KindModule, results[1].Kind)
	assert.Empty(t, results[1].Folder)
	assert.Equal(t, domain.KindUnknown, results[2].Kind)
	assert.Equal(t, 5, results[2].Size)

	_, err = f.app.Transpile(context.Background(), filepath.Join(f.root, "src", "calc.wasm"))
	require.NoError(t, err)

	results, err = f.app.Inspect(context.Background(), paths[:1])
	require.NoError(t, err)
	assert.True(t, results[0].Generated)
	assert.Equal(t, []string{filepath.Join(f.root, "src", "calc.wasm")}, results[0].Assets)
}

func TestApp_Inspect_MissingFile(t *testing.T) {
	f := newFixture(t, "")

	_, err := f.app.Inspect(context.Background(), []string{"missing.wasm"})
	require.ErrorIs(t, err, domain.ErrAssetReadFailed)
}

func TestApp_Prune(t *testing.T) {
	f := newFixture(t, "")
	writeSources(t, f.root)

	res, err := f.app.Transpile(context.Background(), filepath.Join(f.root, "src", "calc.wasm"))
	require.NoError(t, err)

	orphan := filepath.Join(f.outRoot(), "orphan-00000000")
	temp := filepath.Join(f.outRoot(), domain.TempPrefix+"calc-deadbeef-123456")
	require.NoError(t, os.MkdirAll(orphan, domain.DirPerm))
	require.NoError(t, os.MkdirAll(temp, domain.DirPerm))

	report, err := f.app.Prune(context.Background(), app.PruneOptions{DryRun: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"orphan-00000000", filepath.Base(temp)}, report.Removed)
	assert.Equal(t, 1, report.Kept)
	assert.DirExists(t, orphan)

	report, err = f.app.Prune(context.Background(), app.PruneOptions{})
	require.NoError(t, err)
	assert.Len(t, report.Removed, 2)
	assert.NoDirExists(t, orphan)
	assert.NoDirExists(t, temp)
	assert.DirExists(t, filepath.Join(f.outRoot(), res.Folder))

	rec, err := f.store.Get(f.outRoot(), res.Folder)
	require.NoError(t, err)
	require.NotNil(t, rec)
	rec.LastUsedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, f.store.Put(f.outRoot(), *rec))

	report, err = f.app.Prune(context.Background(), app.PruneOptions{MaxAge: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, []string{res.Folder}, report.Removed)
	assert.NoDirExists(t, filepath.Join(f.outRoot(), res.Folder))

	rec, err = f.store.Get(f.outRoot(), res.Folder)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestApp_Prune_NothingGenerated(t *testing.T) {
	f := newFixture(t, "")

	report, err := f.app.Prune(context.Background(), app.PruneOptions{})
	require.NoError(t, err)
	assert.Empty(t, report.Removed)
	assert.True(t, strings.HasSuffix(report.OutRoot, domain.GenDirName))
}
