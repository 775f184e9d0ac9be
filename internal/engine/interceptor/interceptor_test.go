package interceptor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/witshim/internal/adapters/cas"
	"go.trai.ch/witshim/internal/adapters/fs"
	"go.trai.ch/witshim/internal/adapters/lock"
	"go.trai.ch/witshim/internal/adapters/telemetry"
	"go.trai.ch/witshim/internal/adapters/wasmcheck"
	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/witshim/internal/core/ports/mocks"
	"go.trai.ch/witshim/internal/engine/interceptor"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"
)

var (
	componentBytes = []byte{0x00, 0x61, 0x73, 0x6D, 0x0D, 0x00, 0x01, 0x00, 0x01, 0x02}
	moduleBytes    = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	coreImport     = regexp.MustCompile(`'([^']*\.core\d*\.wasm)'`)
)

// fakeJco writes the artifacts jco would emit for an asset.
type fakeJco struct {
	calls  atomic.Int32
	delay  time.Duration
	extra  bool
	noGlue bool
	err    error
}

func (f *fakeJco) Transpile(_ context.Context, assetPath, outDir string) error {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return f.err
	}

	name := domain.AssetName(assetPath)
	glue := "const core = fetchCompile(new URL('./" + domain.CoreFile(name) + "', import.meta.url));\n"
	files := map[string][]byte{
		domain.CoreFile(name):  moduleBytes,
		domain.TypesFile(name): []byte("export function add(a: number, b: number): number;\n"),
	}
	if f.extra {
		glue += "const core2 = fetchCompile(new URL('./" + name + ".core2.wasm', import.meta.url));\n"
		files[name+".core2.wasm"] = moduleBytes
	}
	if f.noGlue {
		glue = "export {};\n"
	}
	files[domain.GlueFile(name)] = []byte(glue)

	for file, data := range files {
		if err := os.WriteFile(filepath.Join(outDir, file), data, domain.FilePerm); err != nil {
			return err
		}
	}
	return nil
}

type fixture struct {
	root  string
	store *cas.Store
	icpt  *interceptor.Interceptor
}

func newFixture(t *testing.T, tr ports.Transpiler, opts interceptor.Options) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), []byte("{}"))

	store := cas.NewStore()
	icpt := interceptor.New(interceptor.Deps{
		Roots:      fs.NewRootFinder(fs.NewOSFS()),
		Transpiler: tr,
		Verifier:   wasmcheck.New(false),
		Store:      store,
		Hasher:     fs.NewHasher(fs.NewWalker()),
		Locker:     lock.NewLocker(),
		Shims:      fs.NewShimWriter(),
		Tracer:     telemetry.NewNoOpTracer(),
		Logger:     mockLogger,
	}, opts)

	return &fixture{root: root, store: store, icpt: icpt}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, data, domain.FilePerm))
}

func (f *fixture) asset(t *testing.T, rel string, data []byte) string {
	t.Helper()
	path := filepath.Join(f.root, filepath.FromSlash(rel))
	writeFile(t, path, data)
	return path
}

func coreImports(t *testing.T, glue []byte) []string {
	t.Helper()
	var out []string
	for _, m := range coreImport.FindAllSubmatch(glue, -1) {
		out = append(out, string(m[1]))
	}
	return out
}

func TestLoad_UnknownBytesPassThrough(t *testing.T) {
	jco := &fakeJco{}
	f := newFixture(t, jco, interceptor.Options{})
	text := []byte("definitely not wasm")
	path := f.asset(t, "src/notes.wasm", text)

	res, err := f.icpt.Load(context.Background(), domain.LoadRequest{Path: path})
	require.NoError(t, err)

	assert.Equal(t, domain.LoaderDefault, res.Loader)
	assert.Equal(t, text, res.Contents)
	assert.Equal(t, domain.KindUnknown, res.Kind)
	assert.False(t, res.Substituted())
	assert.Zero(t, jco.calls.Load())
	assert.NoFileExists(t, domain.ShimPath(path))
}

func TestLoad_CoreModulePassThrough(t *testing.T) {
	jco := &fakeJco{}
	f := newFixture(t, jco, interceptor.Options{})
	path := f.asset(t, "src/plain.wasm", moduleBytes)

	res, err := f.icpt.Load(context.Background(), domain.LoadRequest{Path: path})
	require.NoError(t, err)

	assert.Equal(t, domain.LoaderDefault, res.Loader)
	assert.Equal(t, moduleBytes, res.Contents)
	assert.Equal(t, domain.KindModule, res.Kind)
	assert.Zero(t, jco.calls.Load())
	assert.NoDirExists(t, filepath.Join(f.root, domain.GenDirName))
}

func TestLoad_ComponentSubstituted(t *testing.T) {
	jco := &fakeJco{}
	f := newFixture(t, jco, interceptor.Options{})
	path := f.asset(t, "src/widgets/calc.wasm", componentBytes)
	folder := domain.DeriveCacheKey("calc", componentBytes).Folder()

	res, err := f.icpt.Load(context.Background(), domain.LoadRequest{Path: path})
	require.NoError(t, err)

	assert.Equal(t, domain.LoaderTS, res.Loader)
	assert.Equal(t, domain.KindComponent, res.Kind)
	assert.Equal(t, folder, res.Folder)
	assert.Equal(t, filepath.Dir(path), res.ResolveDir)
	assert.Equal(t, []string{path}, res.WatchFiles)
	assert.Equal(t, []string{"../../gen-ts/" + folder + "/calc.core.wasm"}, coreImports(t, res.Contents))

	shim, err := os.ReadFile(domain.ShimPath(path))
	require.NoError(t, err)
	assert.Equal(t, "export * from '../../gen-ts/"+folder+"/calc.js';\n", string(shim))

	outRoot := filepath.Join(f.root, domain.GenDirName)
	rec, err := f.store.Get(outRoot, folder)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, []string{path}, rec.Assets)
	assert.Contains(t, rec.Files, "calc.core.wasm")

	entries, err := os.ReadDir(outRoot)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), domain.TempPrefix), "leftover %s", e.Name())
	}
}

func TestLoad_ReusesValidFolder(t *testing.T) {
	jco := &fakeJco{}
	f := newFixture(t, jco, interceptor.Options{})
	path := f.asset(t, "src/calc.wasm", componentBytes)

	first, err := f.icpt.Load(context.Background(), domain.LoadRequest{Path: path})
	require.NoError(t, err)
	second, err := f.icpt.Load(context.Background(), domain.LoadRequest{Path: path})
	require.NoError(t, err)

	assert.Equal(t, first.Contents, second.Contents)
	assert.Equal(t, int32(1), jco.calls.Load())
}

func TestLoad_RegeneratesTamperedFolder(t *testing.T) {
	jco := &fakeJco{}
	f := newFixture(t, jco, interceptor.Options{})
	path := f.asset(t, "src/calc.wasm", componentBytes)

	res, err := f.icpt.Load(context.Background(), domain.LoadRequest{Path: path})
	require.NoError(t, err)

	glue := filepath.Join(f.root, domain.GenDirName, res.Folder, "calc.js")
	require.NoError(t, os.WriteFile(glue, []byte("tampered"), domain.FilePerm))

	res, err = f.icpt.Load(context.Background(), domain.LoadRequest{Path: path})
	require.NoError(t, err)
	assert.Equal(t, int32(2), jco.calls.Load())
	assert.Len(t, coreImports(t, res.Contents), 1)
}

func TestLoad_IdenticalBytesShareFolder(t *testing.T) {
	jco := &fakeJco{}
	f := newFixture(t, jco, interceptor.Options{})
	a := f.asset(t, "src/a/calc.wasm", componentBytes)
	b := f.asset(t, "lib/deep/nested/calc.wasm", componentBytes)

	resA, err := f.icpt.Load(context.Background(), domain.LoadRequest{Path: a})
	require.NoError(t, err)
	resB, err := f.icpt.Load(context.Background(), domain.LoadRequest{Path: b})
	require.NoError(t, err)

	assert.Equal(t, resA.Folder, resB.Folder)
	assert.Equal(t, int32(1), jco.calls.Load())

	for _, res := range []domain.LoadResult{resA, resB} {
		imports := coreImports(t, res.Contents)
		require.Len(t, imports, 1)
		assert.FileExists(t, filepath.Join(res.ResolveDir, filepath.FromSlash(imports[0])))
	}

	rec, err := f.store.Get(filepath.Join(f.root, domain.GenDirName), resA.Folder)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.ElementsMatch(t, []string{a, b}, rec.Assets)
}

func TestLoad_ConcurrentLoadsTranspileOnce(t *testing.T) {
	jco := &fakeJco{delay: 50 * time.Millisecond}
	f := newFixture(t, jco, interceptor.Options{})

	paths := make([]string, 8)
	for i := range paths {
		paths[i] = f.asset(t, filepath.Join("pkg", string(rune('a'+i)), "calc.wasm"), componentBytes)
	}

	var g errgroup.Group
	for _, p := range paths {
		g.Go(func() error {
			res, err := f.icpt.Load(context.Background(), domain.LoadRequest{Path: p})
			if err != nil {
				return err
			}
			if !res.Substituted() {
				return errors.New("not substituted: " + p)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), jco.calls.Load())

	// Callers that shared the generation are recorded too.
	folder := domain.DeriveCacheKey("calc", componentBytes).Folder()
	rec, err := f.store.Get(filepath.Join(f.root, domain.GenDirName), folder)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.ElementsMatch(t, paths, rec.Assets)
}

func TestLoad_ExtraCoresRewritten(t *testing.T) {
	jco := &fakeJco{extra: true}
	f := newFixture(t, jco, interceptor.Options{})
	path := f.asset(t, "src/calc.wasm", componentBytes)

	res, err := f.icpt.Load(context.Background(), domain.LoadRequest{Path: path})
	require.NoError(t, err)

	prefix := "../gen-ts/" + res.Folder + "/"
	assert.Equal(t, []string{prefix + "calc.core.wasm", prefix + "calc.core2.wasm"}, coreImports(t, res.Contents))

	// Served from the record on the second load.
	res, err = f.icpt.Load(context.Background(), domain.LoadRequest{Path: path})
	require.NoError(t, err)
	assert.Equal(t, []string{prefix + "calc.core.wasm", prefix + "calc.core2.wasm"}, coreImports(t, res.Contents))
	assert.Equal(t, int32(1), jco.calls.Load())
}

func TestLoad_AbsoluteOutDir(t *testing.T) {
	jco := &fakeJco{}
	out := t.TempDir()
	f := newFixture(t, jco, interceptor.Options{OutDir: out})
	path := f.asset(t, "calc.wasm", componentBytes)

	res, err := f.icpt.Load(context.Background(), domain.LoadRequest{Path: path})
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(out, res.Folder))
	assert.Equal(t, out, f.icpt.OutRoot(f.root))
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name    string
		jco     *fakeJco
		opts    interceptor.Options
		wantErr error
	}{
		{
			name:    "transpiler fails",
			jco:     &fakeJco{err: zerr.Wrap(domain.ErrTranspilerFailed, "exit status 1")},
			wantErr: domain.ErrTranspilerFailed,
		},
		{
			name:    "glue without core import",
			jco:     &fakeJco{noGlue: true},
			wantErr: domain.ErrImportTokenNotFound,
		},
		{
			name:    "no project root",
			jco:     &fakeJco{},
			opts:    interceptor.Options{Markers: []string{"witshim-test-marker-absent"}},
			wantErr: domain.ErrProjectRootNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.jco, tt.opts)
			path := f.asset(t, "src/calc.wasm", componentBytes)

			_, err := f.icpt.Load(context.Background(), domain.LoadRequest{Path: path})
			require.ErrorIs(t, err, tt.wantErr)

			var zErr *zerr.Error
			require.ErrorAs(t, err, &zErr)
			assert.Equal(t, path, zErr.Metadata()["asset"])
			assert.NoFileExists(t, domain.ShimPath(path))
		})
	}
}

func TestLoad_IncompleteOutputNotPublished(t *testing.T) {
	f := newFixture(t, transpilerFunc(func(_ context.Context, assetPath, outDir string) error {
		name := domain.AssetName(assetPath)
		return os.WriteFile(filepath.Join(outDir, domain.GlueFile(name)), []byte("x"), domain.FilePerm)
	}), interceptor.Options{})
	path := f.asset(t, "src/calc.wasm", componentBytes)

	_, err := f.icpt.Load(context.Background(), domain.LoadRequest{Path: path})
	require.ErrorIs(t, err, domain.ErrArtifactInvalid)

	entries, err := os.ReadDir(filepath.Join(f.root, domain.GenDirName))
	require.NoError(t, err)
	for _, e := range entries {
		assert.True(t, strings.HasPrefix(e.Name(), "."), "unexpected %s", e.Name())
		assert.False(t, strings.HasPrefix(e.Name(), domain.TempPrefix), "leftover %s", e.Name())
	}
}

func TestLoad_MissingAsset(t *testing.T) {
	f := newFixture(t, &fakeJco{}, interceptor.Options{})

	_, err := f.icpt.Load(context.Background(), domain.LoadRequest{Path: filepath.Join(f.root, "gone.wasm")})
	require.ErrorIs(t, err, domain.ErrAssetReadFailed)
}

type transpilerFunc func(ctx context.Context, assetPath, outDir string) error

func (fn transpilerFunc) Transpile(ctx context.Context, assetPath, outDir string) error {
	return fn(ctx, assetPath, outDir)
}
