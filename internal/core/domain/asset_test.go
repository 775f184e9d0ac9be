package domain_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/witshim/internal/core/domain"
)

func TestNewAsset(t *testing.T) {
	path := filepath.FromSlash("/repo/src/widgets/foo.wasm")
	a := domain.NewAsset(path, []byte{0x00, 0x61, 0x73, 0x6D, 0x0D, 0x00, 0x01, 0x00})

	assert.Equal(t, domain.KindComponent, a.Kind)
	assert.Equal(t, "foo", a.Name())
	assert.Equal(t, filepath.FromSlash("/repo/src/widgets"), a.Dir())
}

func TestArtifactSet_Paths(t *testing.T) {
	dir := filepath.FromSlash("/repo/gen-ts/foo-abc12345")
	set := domain.NewArtifactSet(dir, "foo")

	assert.Equal(t, filepath.Join(dir, "foo.js"), set.Glue())
	assert.Equal(t, filepath.Join(dir, "foo.core.wasm"), set.Core())
	assert.Equal(t, filepath.Join(dir, "foo.d.ts"), set.Types())
	assert.Equal(t, []string{"foo.js", "foo.core.wasm", "foo.d.ts"}, set.Required())
}

func TestIsExtraCore(t *testing.T) {
	assert.True(t, domain.IsExtraCore("foo", "foo.core2.wasm"))
	assert.True(t, domain.IsExtraCore("foo", "foo.core13.wasm"))
	assert.False(t, domain.IsExtraCore("foo", "foo.core.wasm"))
	assert.False(t, domain.IsExtraCore("foo", "foo.corex.wasm"))
	assert.False(t, domain.IsExtraCore("foo", "bar.core2.wasm"))
	assert.False(t, domain.IsExtraCore("foo", "foo.core2.js"))
}
