// SPDX-License-Identifier: MPL-2.0

//go:build linux

package shim

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// lockFileName is the lock file kept next to the features. An orphaned lock
// file is harmless: the kernel drops the flock when the descriptor closes.
const lockFileName = ".provision.lock"

// errFlockUnavailable is returned by the non-Linux acquireLock.
var errFlockUnavailable = errors.New("flock not available on this platform")

// fileLock is an exclusive flock serializing provisioning across processes.
type fileLock struct {
	file *os.File
}

// acquireLock blocks until the runtime directory's lock is held.
func acquireLock(dir string) (*fileLock, error) {
	lockPath := filepath.Join(dir, lockFileName)

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", lockPath, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("flock %s: %w", lockPath, err)
	}

	return &fileLock{file: f}, nil
}

// Release unlocks and closes the lock file. Later calls are no-ops.
func (l *fileLock) Release() {
	if l == nil || l.file == nil {
		return
	}
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		slog.Debug("flock unlock failed", "error", err)
	}
	if err := l.file.Close(); err != nil {
		slog.Debug("lock file close failed", "error", err)
	}
	l.file = nil
}
