// SPDX-License-Identifier: MPL-2.0

package resolve

// Launch modes.
const (
	// Replace runs the command as a new process image.
	Replace Mode = iota
	// Load runs a shell script inside the engine's embedded interpreter.
	Load
)

type (
	// Mode is how a resolved command is launched.
	Mode int

	// Command is a resolved command. It is never modified after resolution;
	// WithMode returns a copy.
	Command struct {
		// Name is the command name as typed.
		Name string
		// Path is the absolute file to run. Empty means search PATH at launch.
		Path string
		// Literal is the path as the user wrote it; $0 of a loaded script.
		Literal string
		// Package owns the executable, if known.
		Package string
		// Args are the command's arguments (for shell strings: "-c", string).
		Args []string
		// Mode is the launch mode.
		Mode Mode
		// Self is set for the engine's own entry point.
		Self bool
		// Shell is set for shell command strings run through sh -c.
		Shell bool
		// Warnings are non-fatal diagnostics found during resolution.
		Warnings []string
	}
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Replace:
		return "replace"
	case Load:
		return "load"
	default:
		return "unknown"
	}
}

// WithMode returns a copy of c launched in mode m.
func (c *Command) WithMode(m Mode) *Command {
	cp := *c
	cp.Args = append([]string(nil), c.Args...)
	cp.Warnings = append([]string(nil), c.Warnings...)
	cp.Mode = m
	return &cp
}

// Argv returns the argument vector for exec: the literal path followed by
// the arguments.
func (c *Command) Argv() []string {
	argv0 := c.Literal
	if argv0 == "" {
		argv0 = c.Name
	}
	return append([]string{argv0}, c.Args...)
}
