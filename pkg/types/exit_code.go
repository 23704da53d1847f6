// SPDX-License-Identifier: MPL-2.0

// Package types defines cross-cutting value types shared by the exec engine
// packages and the CLI layer.
//
// This package is a leaf dependency: it imports only the standard library.
package types

import (
	"errors"
	"fmt"
	"strconv"
)

// Exit status conventions shared by the shell, the engine, and the CLI.
const (
	// ExitSuccess is returned when the child exits cleanly.
	ExitSuccess ExitCode = 0
	// ExitFailure is the generic engine failure status.
	ExitFailure ExitCode = 1
	// ExitNotExecutable is returned when the resolved path cannot be executed.
	ExitNotExecutable ExitCode = 126
	// ExitCommandNotFound is returned when no executable could be located.
	ExitCommandNotFound ExitCode = 127
	// ExitUsage is returned when exec is invoked without a command.
	ExitUsage ExitCode = 128

	// signalBase is added to a signal number for children killed by that signal.
	signalBase = 128
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode represents a process exit status code.
	// Exit codes are in the range 0-255 on POSIX systems.
	// The zero value (0) means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside the
	// valid range (0-255).
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// FromSignal returns the exit code reported for a process terminated by
// the given signal number.
func FromSignal(signum int) ExitCode { return ExitCode(signalBase + signum) }

// Validate returns an error if the ExitCode is outside the valid range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// Signal returns the signal number encoded in the exit code and whether the
// code is in the signal range (129-255).
func (c ExitCode) Signal() (int, bool) {
	if c > signalBase && c <= 255 {
		return int(c) - signalBase, true
	}
	return 0, false
}

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
