// SPDX-License-Identifier: MPL-2.0

// Package execargs splits the argument vector of `bundlerun exec` into the
// engine's own flags, the command name and the command's arguments.
//
// Engine flags are only recognised before the command name. A help flag
// before the command requests the engine's help page; at or after the
// command name it belongs to the command.
package execargs
