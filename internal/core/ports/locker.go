package ports

import "context"

// Lock is a held generation folder lock.
type Lock interface {
	Unlock() error
}

// Locker serializes work on a generation folder across goroutines and processes.
//
//go:generate mockgen -source=locker.go -destination=mocks/mock_locker.go -package=mocks
type Locker interface {
	// Lock blocks until the folder lock under outRoot is held or ctx is done.
	Lock(ctx context.Context, outRoot, folder string) (Lock, error)
}
