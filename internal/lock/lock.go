package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrUnavailable is returned when the lock file cannot be created or
// acquired, for example because its directory does not exist.
var ErrUnavailable = errors.New("switch lock unavailable")

// retryInterval is how often a blocked acquisition re-attempts the flock.
const retryInterval = 250 * time.Millisecond

// SwitchLock is the machine-wide mutual exclusion token serializing track
// switches. It is backed by an advisory file lock, so it excludes other
// processes as well as other goroutines, and the kernel releases it if the
// holder dies.
type SwitchLock struct {
	// fl is the underlying advisory file lock.
	fl *flock.Flock
}

// New creates a lock keyed by the provided path. The file's content is
// irrelevant; only the lock on it matters.
func New(path string) *SwitchLock {
	return &SwitchLock{
		fl: flock.New(filepath.Clean(path)),
	}
}

// Acquire blocks until the lock is held or the context is canceled and
// returns a release function. Callers must defer the release so the lock is
// dropped on every exit path. If the lock file's directory is missing or
// unwritable, Acquire fails with ErrUnavailable before blocking.
func (l *SwitchLock) Acquire(ctx context.Context) (func(), error) {
	dir := filepath.Dir(l.fl.Path())
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	locked, err := l.fl.TryLockContext(ctx, retryInterval)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if !locked {
		return nil, ErrUnavailable
	}

	return func() {
		_ = l.fl.Unlock()
	}, nil
}

// TryAcquire attempts a non-blocking acquisition. It returns false without
// error when another process currently holds the lock.
func (l *SwitchLock) TryAcquire() (func(), bool, error) {
	locked, err := l.fl.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if !locked {
		return nil, false, nil
	}

	return func() {
		_ = l.fl.Unlock()
	}, true, nil
}
