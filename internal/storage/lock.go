package storage

import (
	"fmt"
	"os"
)

// FileLock is an exclusive advisory lock held on a sidecar file. It is not
// safe for concurrent use by itself; callers pair it with a mutex.
type FileLock struct {
	path string
	f    *os.File
}

// NewFileLock returns a lock on path. The file is created on first Lock.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// LockPath returns the sidecar lock file used for a notes file.
func LockPath(notesPath string) string {
	return notesPath + ".lock"
}

// Lock blocks until the exclusive lock is held.
func (l *FileLock) Lock() error {
	if l.f != nil {
		return fmt.Errorf("storage: lock %s already held", l.path)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("storage: open lock: %w", err)
	}
	if err := flockExclusive(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("storage: flock: %w", err)
	}
	l.f = f
	return nil
}

// Unlock releases the lock and closes the lock file.
func (l *FileLock) Unlock() error {
	if l.f == nil {
		return nil
	}
	f := l.f
	l.f = nil
	if err := flockUnlock(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("storage: unlock: %w", err)
	}
	return f.Close()
}

// NopLocker satisfies Locker without doing anything.
type NopLocker struct{}

// Lock is a no-op.
func (NopLocker) Lock() error { return nil }

// Unlock is a no-op.
func (NopLocker) Unlock() error { return nil }
