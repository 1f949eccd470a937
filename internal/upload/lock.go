package upload

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock serialises upload sessions across processes sharing the same lock file.
type Lock struct {
	path string
	lock *flock.Flock
}

// NewLock prepares a lock at path. The parent directory is created on demand.
func NewLock(path string) *Lock {
	return &Lock{path: path, lock: flock.New(path)}
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// TryAcquire takes the lock without blocking and reports whether it was
// obtained.
func (l *Lock) TryAcquire() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquire upload lock: %w", err)
	}
	return ok, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release upload lock: %w", err)
	}
	return nil
}
