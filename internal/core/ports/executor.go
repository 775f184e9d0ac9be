// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/witshim/internal/core/domain"
)

// Executor defines the interface for running external processes.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd to completion, copying its output to stdout and stderr.
	// A missing executable surfaces as exec.ErrNotFound and a non-zero exit
	// carries the exit code as error metadata.
	Execute(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error
}
