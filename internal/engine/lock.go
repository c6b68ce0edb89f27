package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/obentoo/drupdate/internal/common/logger"
)

const (
	// LockFileName marks a running update at the project root
	LockFileName = ".drupdate.lock"

	// lockLifetime is the age after which a lock is considered stale
	lockLifetime = time.Hour
)

// Lock is a held project lock
type Lock struct {
	path string
}

// AcquireLock creates root/.drupdate.lock. A lock younger than one hour makes
// it fail with ErrLocked; an older one is removed and taken over.
func AcquireLock(root string) (*Lock, error) {
	path := filepath.Join(root, LockFileName)

	if info, err := os.Stat(path); err == nil {
		if time.Since(info.ModTime()) <= lockLifetime {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		logger.Info("The update lock %s is stale, removing it", path)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return nil, err
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		return nil, err
	}
	return &Lock{path: path}, nil
}

// Path returns the lock file path
func (l *Lock) Path() string {
	return l.path
}

// Release removes the lock file
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
