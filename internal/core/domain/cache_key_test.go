package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/witshim/internal/core/domain"
)

// emptyDigest is the BLAKE3-256 digest of the empty input. If this changes, every
// generation folder on disk is orphaned.
const emptyDigest = "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"

func TestDeriveCacheKey_Golden(t *testing.T) {
	key := domain.DeriveCacheKey("foo", nil)
	require.Equal(t, emptyDigest, key.Digest, "digest algorithm changed! Verify if this is intentional.")
	assert.Equal(t, "af1349b9", key.Prefix())
	assert.Equal(t, "foo-af1349b9", key.Folder())
}

func TestDeriveCacheKey_Deterministic(t *testing.T) {
	content := []byte{0x00, 0x61, 0x73, 0x6D, 0x0D, 0x00, 0x01, 0x00, 0x42}

	first := domain.DeriveCacheKey("widget", content)
	second := domain.DeriveCacheKey("widget", append([]byte(nil), content...))

	assert.Equal(t, first, second)
	assert.Len(t, first.Digest, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", first.Digest)
}

func TestDeriveCacheKey_DifferentContent(t *testing.T) {
	a := domain.DeriveCacheKey("widget", []byte("component-a"))
	b := domain.DeriveCacheKey("widget", []byte("component-b"))

	assert.NotEqual(t, a.Digest, b.Digest)
	assert.NotEqual(t, a.Folder(), b.Folder())
}

func TestDeriveCacheKey_IndependentOfDirectory(t *testing.T) {
	content := []byte("same bytes")
	a := domain.DeriveCacheKey(domain.AssetName("/repo/a/foo.wasm"), content)
	b := domain.DeriveCacheKey(domain.AssetName("/repo/b/nested/foo.wasm"), content)

	assert.Equal(t, a.Folder(), b.Folder())
}

func TestCacheKey_PrefixShortDigest(t *testing.T) {
	key := domain.CacheKey{Digest: "abc", Name: "x"}
	assert.Equal(t, "abc", key.Prefix())
	assert.Equal(t, "x-abc", key.Folder())
}
