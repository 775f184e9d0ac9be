package ports

// ShimWriter writes the declaration shim next to an asset.
//
//go:generate mockgen -source=shim_writer.go -destination=mocks/mock_shim_writer.go -package=mocks
type ShimWriter interface {
	// WriteShim replaces <assetPath>.d.ts with contents.
	WriteShim(assetPath string, contents []byte) error
}
