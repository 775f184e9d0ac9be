package ports

// RootFinder locates the project root of an asset.
//
//go:generate mockgen -source=root_finder.go -destination=mocks/mock_root_finder.go -package=mocks
type RootFinder interface {
	// Find walks up from start and returns the nearest directory containing one of markers.
	// It returns domain.ErrProjectRootNotFound when the filesystem root is reached.
	Find(start string, markers []string) (string, error)
}
