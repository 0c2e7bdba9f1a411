package file

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// withLock runs fn while holding an exclusive advisory lock scoped to the
// given key path. Acquisition is retried until the configured timeout so a
// busy writer never deadlocks a later one; OS advisory locks are released
// automatically if a holder crashes. The lock is taken on a sidecar file
// so the data file itself can be replaced wholesale.
func (s *Storage) withLock(ctx context.Context, path string, fn func() error) error {
	lock := flock.New(path + ".lock")

	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.LockTimeout)
	defer cancel()

	ok, err := lock.TryLockContext(lockCtx, s.cfg.LockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquiring lock for %s: %w", path, err)
	}
	if !ok {
		return fmt.Errorf("lock for %s not acquired within %v", path, s.cfg.LockTimeout)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}

// Config holds file storage settings
type Config struct {
	// Dir is the directory holding accounts.json and per-account documents
	Dir string

	// Lock acquisition bounds
	LockTimeout    time.Duration
	LockRetryDelay time.Duration
}

// DefaultConfig returns sensible defaults for file storage
func DefaultConfig() Config {
	return Config{
		Dir:            "user_data",
		LockTimeout:    5 * time.Second,
		LockRetryDelay: 50 * time.Millisecond,
	}
}
