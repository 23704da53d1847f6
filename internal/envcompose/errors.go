// SPDX-License-Identifier: MPL-2.0

package envcompose

import (
	"errors"
	"fmt"

	"github.com/bundlerun/bundlerun/pkg/types"
)

// ErrEnvironmentComposition is the sentinel error wrapped by CompositionError.
var ErrEnvironmentComposition = errors.New("environment composition failed")

// CompositionError reports an inherited variable that cannot be parsed.
type CompositionError struct {
	// Var is the malformed variable.
	Var string
	// Value is its inherited value.
	Value string
	// Reason describes the problem when there is no underlying error.
	Reason string
	// Err is the tokenizer error, if any.
	Err error
}

// Error implements the error interface.
func (e *CompositionError) Error() string {
	reason := e.Reason
	if e.Err != nil {
		reason = e.Err.Error()
	}
	return fmt.Sprintf("malformed %s in the inherited environment: %s", e.Var, reason)
}

// Unwrap returns ErrEnvironmentComposition for errors.Is() compatibility.
func (e *CompositionError) Unwrap() error { return ErrEnvironmentComposition }

// ExitCode returns the exit status of a composition failure.
func (e *CompositionError) ExitCode() types.ExitCode { return types.ExitFailure }

// Hints returns remediation suggestions.
func (e *CompositionError) Hints() []string {
	return []string{fmt.Sprintf("Unset %s or fix its value and try again", e.Var)}
}
