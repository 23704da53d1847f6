// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package shim

import "errors"

// errFlockUnavailable makes Ensure fall back to an in-process mutex.
var errFlockUnavailable = errors.New("flock not available on this platform")

// fileLock is the non-Linux stub.
type fileLock struct{}

func acquireLock(string) (*fileLock, error) {
	return nil, errFlockUnavailable
}

// Release is a no-op.
func (l *fileLock) Release() {}
