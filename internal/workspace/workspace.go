// Package workspace prepares the local clone directory and guards it with an
// advisory lock so two runs never share a work tree.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrWorkdirLocked indicates another run holds the work directory.
var ErrWorkdirLocked = errors.New("work directory is locked by another run")

// State describes what currently occupies a work directory.
type State int

const (
	// StateAbsent means nothing exists at the path.
	StateAbsent State = iota
	// StateEmpty is an empty directory.
	StateEmpty
	// StateRepository is a git work tree.
	StateRepository
	// StateStray is a file or a non-empty directory that is not a git work tree.
	StateStray
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateEmpty:
		return "empty"
	case StateRepository:
		return "repository"
	default:
		return "stray"
	}
}

// Inspect reports the state of dir.
func Inspect(dir string) (State, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return StateAbsent, nil
		}
		return StateStray, fmt.Errorf("inspecting %s: %w", dir, err)
	}
	if !info.IsDir() {
		return StateStray, nil
	}

	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return StateRepository, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return StateStray, fmt.Errorf("reading %s: %w", dir, err)
	}
	if len(entries) == 0 {
		return StateEmpty, nil
	}
	return StateStray, nil
}

// Clean removes dir and everything below it.
func Clean(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}
	return nil
}

// Lock is an exclusive advisory lock on a work directory.
type Lock struct {
	fl *flock.Flock
}

// LockPath returns the lock file used for dir.
func LockPath(dir string) string {
	return filepath.Clean(dir) + ".lock"
}

// Acquire takes the lock for dir without blocking.
func Acquire(dir string) (*Lock, error) {
	path := LockPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrWorkdirLocked, path)
	}
	return &Lock{fl: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.fl.Path() }

// Release drops the lock and removes the lock file.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("unlocking %s: %w", l.fl.Path(), err)
	}
	_ = os.Remove(l.fl.Path())
	return nil
}
