package app

import (
	"fmt"

	"github.com/gofrs/flock"
)

// writerLock is the advisory lock that keeps a second videoflow process from
// writing to the same database file.
type writerLock struct {
	path string
	lock *flock.Flock
}

// acquireWriterLock takes the lock next to dbPath without blocking.
func acquireWriterLock(dbPath string) (*writerLock, error) {
	path := dbPath + ".lock"
	l := flock.New(path)

	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("database is in use by another videoflow process (lock %s)", path)
	}
	return &writerLock{path: path, lock: l}, nil
}

func (w *writerLock) release() error {
	if err := w.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", w.path, err)
	}
	return nil
}
