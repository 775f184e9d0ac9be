package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/witshim/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/witshim/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/witshim/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/witshim/internal/adapters/lock"      //nolint:depguard // Wired in app layer
	"go.trai.ch/witshim/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/witshim/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"go.trai.ch/witshim/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/witshim/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			shell.NodeID,
			logger.NodeID,
			cas.NodeID,
			fs.HasherNodeID,
			fs.RootFinderNodeID,
			fs.ShimWriterNodeID,
			lock.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{
				App:    a,
				Logger: log,
			}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.GenerationStore](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	roots, err := graft.Dep[ports.RootFinder](ctx)
	if err != nil {
		return nil, err
	}

	shims, err := graft.Dep[ports.ShimWriter](ctx)
	if err != nil {
		return nil, err
	}

	locker, err := graft.Dep[ports.Locker](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	return New(Deps{
		ConfigLoader: loader,
		Executor:     executor,
		Logger:       log,
		Store:        store,
		Hasher:       hasher,
		Roots:        roots,
		Locker:       locker,
		Shims:        shims,
		Tracer:       tracer,
	}), nil
}
