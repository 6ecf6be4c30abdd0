package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// LockFileName sits at the corpus root while a build runs
const LockFileName = ".logsynth.lock"

// RootLock keeps two generators from rewriting the same tree at once
type RootLock struct {
	lockFile *os.File
	path     string
}

// LockRoot creates root if needed and takes a non-blocking exclusive lock on it
func LockRoot(root string) (*RootLock, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	lockPath := filepath.Join(root, LockFileName)
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		file.Close()
		return nil, fmt.Errorf("another generator is already writing to %s", root)
	}

	return &RootLock{lockFile: file, path: lockPath}, nil
}

// Unlock releases the lock and removes the lock file
func (l *RootLock) Unlock() error {
	if l.lockFile == nil {
		return nil
	}

	syscall.Flock(int(l.lockFile.Fd()), syscall.LOCK_UN)
	l.lockFile.Close()
	l.lockFile = nil

	return os.Remove(l.path)
}
