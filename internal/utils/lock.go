package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrArchiveBusy is returned when another process held the archive for the
// whole wait.
var ErrArchiveBusy = errors.New("archive is locked by another crimefeed process")

const (
	lockFileSuffix = ".lock"
	lockRetryDelay = 250 * time.Millisecond
)

// ArchiveLock serializes archive write batches between crimefeed processes,
// for example a running serve and a one-off fetch --db.
type ArchiveLock struct {
	flock   *flock.Flock
	path    string
	maxWait time.Duration
}

// NewArchiveLock returns a lock kept next to the archive file. maxWait
// bounds each Acquire; zero means wait as long as the context allows.
func NewArchiveLock(archivePath string, maxWait time.Duration) *ArchiveLock {
	path := archivePath + lockFileSuffix
	return &ArchiveLock{flock: flock.New(path), path: path, maxWait: maxWait}
}

func (l *ArchiveLock) Path() string { return l.path }

// Acquire takes the lock for one write batch. It gives up with
// ErrArchiveBusy once ctx ends or maxWait elapses, so a stuck writer can't
// stall an aggregation cycle.
func (l *ArchiveLock) Acquire(ctx context.Context) error {
	locked, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", l.path, err)
	}
	if locked {
		return nil
	}

	Log.Infof("Archive %s is busy, waiting for the other writer", l.path)
	if l.maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.maxWait)
		defer cancel()
	}
	locked, err = l.flock.TryLockContext(ctx, lockRetryDelay)
	if locked {
		return nil
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("lock %s: %w", l.path, err)
	}
	return fmt.Errorf("%w: %s", ErrArchiveBusy, l.path)
}

// Release drops the lock. Releasing an unheld lock is a no-op.
func (l *ArchiveLock) Release() error {
	if err := l.flock.Unlock(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unlock %s: %w", l.path, err)
	}
	return nil
}

// ArchivePath resolves the archive location, defaulting to
// ~/.config/crimefeed/crimefeed.sqlite.
func ArchivePath(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "crimefeed", "crimefeed.sqlite"), nil
	}
	return filepath.Abs(path)
}
