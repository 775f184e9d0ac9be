package domain

import (
	"path/filepath"
	"strings"
)

// Asset is a binary file intercepted by the bundler. It is read fresh on every load.
type Asset struct {
	// Path is the absolute path of the asset.
	Path string
	// Content holds the raw bytes.
	Content []byte
	// Kind is the detected binary kind.
	Kind Kind
}

// NewAsset classifies content loaded from path.
func NewAsset(path string, content []byte) Asset {
	return Asset{
		Path:    path,
		Content: content,
		Kind:    DetectKind(content),
	}
}

// Dir returns the directory containing the asset.
func (a Asset) Dir() string {
	return filepath.Dir(a.Path)
}

// Name returns the base file name without extension.
func (a Asset) Name() string {
	return AssetName(a.Path)
}

// AssetName strips the directory and the extension from path.
func AssetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ArtifactSet lists the files one transpilation produces in its folder.
type ArtifactSet struct {
	// Dir is the absolute path of the generation folder.
	Dir string
	// Name is the asset base name shared by every artifact.
	Name string
	// ExtraCores lists additional core binaries such as "<name>.core2.wasm".
	ExtraCores []string
}

// NewArtifactSet describes the artifacts expected for name inside dir.
func NewArtifactSet(dir, name string) ArtifactSet {
	return ArtifactSet{Dir: dir, Name: name}
}

// Glue returns the path of the generated glue module.
func (s ArtifactSet) Glue() string {
	return filepath.Join(s.Dir, GlueFile(s.Name))
}

// Core returns the path of the primary core binary.
func (s ArtifactSet) Core() string {
	return filepath.Join(s.Dir, CoreFile(s.Name))
}

// Types returns the path of the generated declaration file.
func (s ArtifactSet) Types() string {
	return filepath.Join(s.Dir, TypesFile(s.Name))
}

// Required returns the file names that must exist for the set to be usable.
func (s ArtifactSet) Required() []string {
	return []string{GlueFile(s.Name), CoreFile(s.Name), TypesFile(s.Name)}
}

// IsExtraCore reports whether file is a secondary core binary of name,
// for instance "foo.core2.wasm".
func IsExtraCore(name, file string) bool {
	prefix := name + ".core"
	if !strings.HasPrefix(file, prefix) || !strings.HasSuffix(file, WasmExt) {
		return false
	}
	n := strings.TrimSuffix(strings.TrimPrefix(file, prefix), WasmExt)
	if n == "" {
		return false
	}
	for _, r := range n {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
