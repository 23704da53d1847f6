// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"syscall"

	"mvdan.cc/sh/v3/syntax"

	"github.com/bundlerun/bundlerun/internal/issue"
	"github.com/bundlerun/bundlerun/internal/resolve"
	"github.com/bundlerun/bundlerun/pkg/types"
)

var (
	// ErrLoadFailed is the sentinel error wrapped by LoadError.
	ErrLoadFailed = errors.New("failed to load command")
	// ErrReplaceUnsupported is returned where the process image cannot be replaced.
	ErrReplaceUnsupported = errors.New("process replacement is not supported on this platform")
)

type (
	// LoadError reports a script that failed inside the embedded interpreter
	// for a reason other than its exit status.
	LoadError struct {
		// Path is the resolved script path.
		Path string
		// Literal is the path as typed.
		Literal string
		// Location is "file:line:col" when known.
		Location string
		Err      error
	}

	// UnknownModeError is returned for a launch mode the runner does not know.
	UnknownModeError struct {
		Mode resolve.Mode
	}

	// interruptedError is the cancellation cause of a loaded script stopped
	// by an intercepted signal.
	interruptedError struct {
		sig os.Signal
	}
)

// Error implements the error interface.
func (e *LoadError) Error() string {
	head := fmt.Sprintf("failed to load command: %s (%s)", e.Path, e.Literal)
	if e.Location != "" {
		return fmt.Sprintf("%s\n%s: %s", head, e.Location, e.message())
	}
	return fmt.Sprintf("%s\n%s (%T)", head, e.message(), e.Err)
}

func (e *LoadError) message() string {
	var parseErr syntax.ParseError
	if errors.As(e.Err, &parseErr) {
		return parseErr.Text
	}
	return e.Err.Error()
}

// Unwrap returns the underlying cause; errors.Is(err, ErrLoadFailed) also holds.
func (e *LoadError) Unwrap() []error { return []error{ErrLoadFailed, e.Err} }

// ExitCode returns 1.
func (e *LoadError) ExitCode() types.ExitCode { return types.ExitFailure }

// Hints returns remediation suggestions.
func (e *LoadError) Hints() []string {
	return []string{"Set disable_exec_load to run scripts with their own interpreter"}
}

// IssueID links the error to its catalog guide.
func (e *LoadError) IssueID() issue.Id { return issue.LoadFailedId }

// Error implements the error interface.
func (e *UnknownModeError) Error() string { return "unknown launch mode: " + e.Mode.String() }

func (e *interruptedError) Error() string { return "interrupted by " + e.sig.String() }

func (e *interruptedError) signum() int {
	if s, ok := e.sig.(syscall.Signal); ok {
		return int(s)
	}
	return int(syscall.SIGINT)
}

// errorOutcome maps a launch failure to the exit status a shell would report.
func errorOutcome(err error) Outcome {
	if err == nil {
		return Outcome{}
	}
	var coded interface{ ExitCode() types.ExitCode }
	switch {
	case errors.As(err, &coded):
		return Outcome{ExitCode: coded.ExitCode(), Err: err}
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return Outcome{ExitCode: types.ExitCommandNotFound, Err: err}
	case errors.Is(err, fs.ErrPermission), errors.Is(err, syscall.ENOEXEC), errors.Is(err, syscall.EISDIR):
		return Outcome{ExitCode: types.ExitNotExecutable, Err: err}
	default:
		return Outcome{ExitCode: types.ExitFailure, Err: err}
	}
}
