// SPDX-License-Identifier: MPL-2.0

// Package shim provisions the runtime setup feature that composed
// environments require through BUNDLERUN_OPT.
//
// The feature is a shell script stored as <dir>/bundlerun/setup.sh, where
// <dir> is the runtime directory prepended to BUNDLERUN_LIB. Loaded scripts
// source it first; it refuses to run outside a bundle environment.
package shim

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	// FeatureDir is the directory under the runtime directory holding features.
	FeatureDir = "bundlerun"
	// SetupFile is the setup feature's file name.
	SetupFile = "setup.sh"
)

var (
	//go:embed setup.sh
	setupScript []byte

	// fallbackMu serializes provisioning where file locks are unavailable.
	fallbackMu sync.Mutex
)

// Script returns the embedded setup feature.
func Script() []byte { return bytes.Clone(setupScript) }

// Path returns the setup feature's location under dir.
func Path(dir string) string {
	return filepath.Join(dir, FeatureDir, SetupFile)
}

// Ensure writes the setup feature under dir when it is missing or stale and
// returns its path. Concurrent invocations are serialized.
func Ensure(dir string) (string, error) {
	if err := os.MkdirAll(filepath.Join(dir, FeatureDir), 0o755); err != nil {
		return "", fmt.Errorf("failed to create runtime directory: %w", err)
	}

	lock, err := acquireLock(dir)
	switch {
	case err == nil:
		defer lock.Release()
	case errors.Is(err, errFlockUnavailable):
		fallbackMu.Lock()
		defer fallbackMu.Unlock()
	default:
		return "", err
	}

	path := Path(dir)
	if current, readErr := os.ReadFile(path); readErr == nil && bytes.Equal(current, setupScript) {
		return path, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), SetupFile+".*")
	if err != nil {
		return "", fmt.Errorf("failed to write setup feature: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(setupScript); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write setup feature: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write setup feature: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write setup feature: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to install setup feature: %w", err)
	}
	return path, nil
}
