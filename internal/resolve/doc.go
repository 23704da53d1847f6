// SPDX-License-Identifier: MPL-2.0

// Package resolve finds the file `bundlerun exec` runs for a command name.
//
// Lookup order: the engine's own names, then the bundle's package
// executables, then the composed PATH. A binstub found on PATH is checked
// against the bundle: one generated for a different package than the
// bundle's provider of the same name produces a warning, one generated for
// a package outside the bundle is an error.
package resolve
