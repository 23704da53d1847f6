// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"errors"

	"github.com/bundlerun/bundlerun/pkg/types"
)

// ExitCoder is implemented by errors that carry their own exit status.
type ExitCoder interface {
	ExitCode() types.ExitCode
}

// ExitCodeOf returns the exit status for an error: its own when it carries
// one, otherwise the generic failure status.
func ExitCodeOf(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	var coded ExitCoder
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return types.ExitFailure
}
