// SPDX-License-Identifier: MPL-2.0

// Package platform names the operating systems bundlerun distinguishes.
// Comparisons against runtime.GOOS use these constants instead of literals.
package platform
