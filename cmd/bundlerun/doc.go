// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for bundlerun.
//
// The exec command hands its raw arguments to the execution engine in
// internal/app/execute; the remaining commands (install, binstub, config)
// are thin wrappers around the bundle, binstub and config packages.
package cmd
