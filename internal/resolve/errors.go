// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"

	"github.com/bundlerun/bundlerun/internal/issue"
	"github.com/bundlerun/bundlerun/pkg/types"
)

var (
	// ErrCommandNotFound is the sentinel error wrapped by CommandNotFoundError.
	ErrCommandNotFound = errors.New("command not found")
	// ErrNotExecutable is the sentinel error wrapped by NotExecutableError.
	ErrNotExecutable = errors.New("not executable")
	// ErrNotInBundle is the sentinel error wrapped by NotInBundleError.
	ErrNotInBundle = errors.New("package not in bundle")
)

type (
	// CommandNotFoundError is returned when nothing provides the command.
	CommandNotFoundError struct {
		Name string
	}

	// NotExecutableError is returned when the resolved file cannot be executed.
	NotExecutableError struct {
		Name string
		Path string
	}

	// NotInBundleError is returned when the command is a binstub of a package
	// outside the bundle.
	NotInBundleError struct {
		Name    string
		Package string
		Path    string
	}
)

// Error implements the error interface.
func (e *CommandNotFoundError) Error() string { return "command not found: " + e.Name }

// Unwrap returns ErrCommandNotFound for errors.Is() compatibility.
func (e *CommandNotFoundError) Unwrap() error { return ErrCommandNotFound }

// ExitCode returns 127.
func (e *CommandNotFoundError) ExitCode() types.ExitCode { return types.ExitCommandNotFound }

// Hints returns remediation suggestions.
func (e *CommandNotFoundError) Hints() []string {
	return []string{"Install missing package executables with `bundlerun install`"}
}

// IssueID links the error to its catalog guide.
func (e *CommandNotFoundError) IssueID() issue.Id { return issue.CommandNotFoundId }

// Error implements the error interface.
func (e *NotExecutableError) Error() string { return "not executable: " + e.Name }

// Unwrap returns ErrNotExecutable for errors.Is() compatibility.
func (e *NotExecutableError) Unwrap() error { return ErrNotExecutable }

// ExitCode returns 126.
func (e *NotExecutableError) ExitCode() types.ExitCode { return types.ExitNotExecutable }

// Hints returns remediation suggestions.
func (e *NotExecutableError) Hints() []string {
	if e.Path == "" {
		return nil
	}
	return []string{fmt.Sprintf("Make it executable with `chmod +x %s`", e.Path)}
}

// IssueID links the error to its catalog guide.
func (e *NotExecutableError) IssueID() issue.Id { return issue.NotExecutableId }

// Error implements the error interface.
func (e *NotInBundleError) Error() string {
	return fmt.Sprintf("can't find executable %s for package %s. %s is not currently included in the bundle, "+
		"perhaps you meant to add it to your Bundlefile?", e.Name, e.Package, e.Package)
}

// Unwrap returns ErrNotInBundle for errors.Is() compatibility.
func (e *NotInBundleError) Unwrap() error { return ErrNotInBundle }

// ExitCode returns 1.
func (e *NotInBundleError) ExitCode() types.ExitCode { return types.ExitFailure }

// Hints returns remediation suggestions.
func (e *NotInBundleError) Hints() []string { return nil }

// IssueID links the error to its catalog guide.
func (e *NotInBundleError) IssueID() issue.Id { return issue.NotInBundleId }
