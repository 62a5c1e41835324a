package archive

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock guards an archive against concurrent toolkit invocations. The design
// assumes one writer per archive; the lock makes a second invocation fail
// fast instead of corrupting sidecars mid-scan.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes the single-writer lock for the archive root without
// blocking. A held lock by another process is an error, not a wait.
func AcquireLock(root string) (*Lock, error) {
	dir, err := EnsureStateDir(root)
	if err != nil {
		return nil, err
	}
	fl := flock.New(filepath.Join(dir, "writer.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire archive lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("archive %s is locked by another invocation", root)
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock. Safe on a nil receiver.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
