package oplock

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"storyforge/internal/config"
)

// ErrHeld indicates another storyforge process holds the write lock.
var ErrHeld = errors.New("another storyforge process is already writing")

// Lock guards mutating operations against concurrent processes.
type Lock struct {
	path string
	lock *flock.Flock
}

// New builds a lock rooted in the configured data directory.
func New(cfg *config.Config) (*Lock, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	path := filepath.Join(cfg.Paths.DataDir, "storyforge.lock")
	return &Lock{path: path, lock: flock.New(path)}, nil
}

// Acquire takes the lock without blocking. Returns ErrHeld when another
// process has it.
func (l *Lock) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrHeld
	}
	return nil
}

// Release drops the lock. Safe to call when not held.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}
