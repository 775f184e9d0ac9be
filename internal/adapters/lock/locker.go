// Package lock serializes work on generation folders across processes.
package lock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/zerr"
)

// pollInterval is how often a contended lock is retried.
const pollInterval = 25 * time.Millisecond

var _ ports.Locker = (*Locker)(nil)

// Locker hands out exclusive locks on "<outRoot>/.locks/<folder>.lock".
// The zero-byte lock files are left in place; the kernel releases a lock when
// its descriptor is closed, including on process crash.
type Locker struct{}

// NewLocker creates a new Locker.
func NewLocker() *Locker {
	return &Locker{}
}

// Path returns the lock file used for folder.
func Path(outRoot, folder string) string {
	return filepath.Join(domain.LockDir(outRoot), folder+".lock")
}

// Lock blocks until the folder lock is held or ctx is done.
func (l *Locker) Lock(ctx context.Context, outRoot, folder string) (ports.Lock, error) {
	path := Path(outRoot, folder)
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(errors.Join(domain.ErrLockFailed, err), "path", path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600) //nolint:gosec // path derived from output root
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrLockFailed, err), "path", path)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		held, err := tryLock(f)
		if err != nil {
			_ = f.Close()
			return nil, zerr.With(errors.Join(domain.ErrLockFailed, err), "path", path)
		}
		if held {
			return &fileLock{file: f}, nil
		}

		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, zerr.With(errors.Join(domain.ErrLockFailed, ctx.Err()), "path", path)
		case <-ticker.C:
		}
	}
}

type fileLock struct {
	file *os.File
}

// Unlock releases the lock. Subsequent calls are no-ops.
func (l *fileLock) Unlock() error {
	if l.file == nil {
		return nil
	}
	unlockErr := unlock(l.file)
	closeErr := l.file.Close()
	l.file = nil

	if unlockErr != nil {
		return zerr.Wrap(unlockErr, "failed to release lock")
	}
	if closeErr != nil {
		return zerr.Wrap(closeErr, "failed to close lock file")
	}
	return nil
}
