package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/witshim/internal/core/ports"
)

const (
	// FileSystemNodeID is the unique identifier for the FileSystem Graft node.
	FileSystemNodeID graft.ID = "adapter.fs.filesystem"
	// WalkerNodeID is the unique identifier for the Walker Graft node.
	WalkerNodeID graft.ID = "adapter.fs.walker"
	// RootFinderNodeID is the unique identifier for the RootFinder Graft node.
	RootFinderNodeID graft.ID = "adapter.fs.root_finder"
	// HasherNodeID is the unique identifier for the Hasher Graft node.
	HasherNodeID graft.ID = "adapter.fs.hasher"
	// ShimWriterNodeID is the unique identifier for the ShimWriter Graft node.
	ShimWriterNodeID graft.ID = "adapter.fs.shim_writer"
)

func init() {
	graft.Register(graft.Node[FileSystem]{
		ID:        FileSystemNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (FileSystem, error) {
			return NewOSFS(), nil
		},
	})

	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	graft.Register(graft.Node[ports.RootFinder]{
		ID:        RootFinderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{FileSystemNodeID},
		Run: func(ctx context.Context) (ports.RootFinder, error) {
			fsys, err := graft.Dep[FileSystem](ctx)
			if err != nil {
				return nil, err
			}
			return NewRootFinder(fsys), nil
		},
	})

	graft.Register(graft.Node[ports.Hasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{WalkerNodeID},
		Run: func(ctx context.Context) (ports.Hasher, error) {
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewHasher(walker), nil
		},
	})

	graft.Register(graft.Node[ports.ShimWriter]{
		ID:        ShimWriterNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ShimWriter, error) {
			return NewShimWriter(), nil
		},
	})
}
