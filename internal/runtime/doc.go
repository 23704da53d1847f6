// SPDX-License-Identifier: MPL-2.0

// Package runtime launches resolved commands.
//
// A Launch is run in one of three ways, chosen by Runner.Run:
//   - replace: the engine's process image is replaced by the command (execve),
//     on platforms that support it and when the runner allows it
//   - spawn: the command runs as a child with direct stdio while the engine
//     waits, forwarding only the interrupt signal
//   - load: a POSIX shell script is run in-process by the embedded interpreter
//     (mvdan.cc/sh) with the composed environment
//
// The exit status follows the shell: a child's exit code, or 128+N when it was
// killed by signal N.
//
// Signals ignored when the process started stay ignored in every launched
// command. With cgo the startup dispositions are read by a C constructor,
// before the Go runtime replaces them with its own handlers.
package runtime
