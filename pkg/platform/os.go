// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// HasExecBit reports whether file permission bits decide executability.
// On Windows every regular file is treated as executable.
func HasExecBit() bool {
	return runtime.GOOS != Windows
}
