package homework

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another batch run holds the lock.
var ErrLocked = errors.New("another homework run is already in progress")

// runLock is an exclusive, non-blocking lock on a file.
type runLock struct {
	path string
	lock *flock.Flock
}

func newRunLock(path string) *runLock {
	return &runLock{path: path, lock: flock.New(path)}
}

func (l *runLock) acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", ErrLocked, l.path)
	}
	return nil
}

func (l *runLock) release() error {
	return l.lock.Unlock()
}
