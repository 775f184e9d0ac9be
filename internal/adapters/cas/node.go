package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/witshim/internal/core/ports"
)

// NodeID is the unique identifier for the generation store Graft node.
const NodeID graft.ID = "adapter.generation_store"

func init() {
	graft.Register(graft.Node[ports.GenerationStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.GenerationStore, error) {
			return NewStore(), nil
		},
	})
}
