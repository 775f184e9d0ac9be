//go:build !unix

package lock

import (
	"os"
	"sync"
)

// Without flock, locks only exclude other goroutines of this process. Files are
// keyed by their name since every Lock call opens a fresh descriptor.
var (
	heldMu sync.Mutex
	held   = make(map[string]struct{})
)

func tryLock(f *os.File) (bool, error) {
	heldMu.Lock()
	defer heldMu.Unlock()

	if _, ok := held[f.Name()]; ok {
		return false, nil
	}
	held[f.Name()] = struct{}{}
	return true, nil
}

func unlock(f *os.File) error {
	heldMu.Lock()
	defer heldMu.Unlock()

	delete(held, f.Name())
	return nil
}
