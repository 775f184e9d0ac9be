package ports

// Hasher fingerprints generated artifacts.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// HashDir returns a fingerprint for every regular file below dir, keyed by its
	// slash-separated path relative to dir.
	HashDir(dir string) (map[string]string, error)
}
