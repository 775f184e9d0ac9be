package domain

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// FolderHashLen is the number of digest hex characters used in a generation folder name.
// Two different binaries sharing a base name collide with probability ~2^-32.
const FolderHashLen = 8

// CacheKey identifies the generated artifacts for one asset content.
type CacheKey struct {
	// Digest is the lowercase hex BLAKE3-256 digest of the asset bytes.
	Digest string
	// Name is the asset base name without the .wasm extension.
	Name string
}

// DeriveCacheKey hashes the raw asset bytes. The result depends only on name and
// content, never on the directory the asset was loaded from.
func DeriveCacheKey(name string, content []byte) CacheKey {
	sum := blake3.Sum256(content)
	return CacheKey{
		Digest: hex.EncodeToString(sum[:]),
		Name:   name,
	}
}

// Prefix returns the short digest used in folder names.
func (k CacheKey) Prefix() string {
	if len(k.Digest) < FolderHashLen {
		return k.Digest
	}
	return k.Digest[:FolderHashLen]
}

// Folder returns the GenerationFolder name, "<name>-<hash8>".
func (k CacheKey) Folder() string {
	return k.Name + "-" + k.Prefix()
}
