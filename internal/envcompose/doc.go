// SPDX-License-Identifier: MPL-2.0

// Package envcompose builds the environment of a command run inside a bundle.
//
// Composition starts from the inherited environment and rewrites a fixed set
// of variables:
//
//   - BUNDLERUN_LIB gains the runtime shim directory (prepended once).
//   - BUNDLERUN_OPT gains the "-rbundlerun/setup" token (prepended once).
//   - BUNDLERUN_PATH becomes the bundle's install roots, followed by the
//     inherited entries only when system fallback is enabled.
//   - PATH gains each package's bin directory (prepended once).
//   - BUNDLERUN_LOCKFILE, BUNDLERUN_MANIFEST and BUNDLERUN_BIN_PATH identify
//     the invocation so nested runs can detect it.
//
// Every rewrite is idempotent: composing an already composed environment
// changes nothing.
package envcompose
