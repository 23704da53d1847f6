// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bundlerun/bundlerun/internal/envcompose"
	"github.com/bundlerun/bundlerun/internal/resolve"
	"github.com/bundlerun/bundlerun/pkg/types"
)

type (
	// Launch is everything needed to start one command.
	Launch struct {
		// Command is the resolved command; its Mode selects load or replace.
		Command *resolve.Command
		// Env is the composed child environment.
		Env envcompose.Environment
		// WorkDir is the child's working directory; empty keeps the current one.
		WorkDir string
		// KeepFileDescriptors passes every inherited descriptor to the child.
		KeepFileDescriptors bool
	}

	// IO holds the standard streams of a launch. Streams that are *os.File
	// are handed to children directly.
	IO struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Outcome is the result of a launch.
	Outcome struct {
		// ExitCode is the status the engine exits with.
		ExitCode types.ExitCode
		// Signal is set when the child was killed by a signal.
		Signal os.Signal
		// Err is set when the command could not be run at all.
		Err error
	}

	// Runner runs launches.
	Runner struct {
		// Replace enables process image replacement for replace-mode launches.
		// When false, or unsupported by the platform, the command is spawned.
		Replace bool
		IO      IO
		Logger  *slog.Logger
	}
)

// NewRunner creates a runner bound to the process's standard streams.
func NewRunner(replace bool) *Runner {
	return &Runner{
		Replace: replace,
		IO:      IO{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr},
	}
}

// Run launches l and returns its outcome. A successful replace never returns.
func (r *Runner) Run(ctx context.Context, l *Launch) Outcome {
	switch l.Command.Mode {
	case resolve.Load:
		r.logger().Debug("loading command", "path", l.Command.Path, "literal", l.Command.Literal)
		return r.load(ctx, l)
	case resolve.Replace:
		if r.Replace && replaceSupported {
			r.logger().Debug("replacing process", "path", l.Command.Path, "keep_fds", l.KeepFileDescriptors)
			return errorOutcome(replace(l))
		}
		r.logger().Debug("spawning command", "path", l.Command.Path)
		return r.spawn(ctx, l)
	default:
		return Outcome{ExitCode: types.ExitFailure, Err: &UnknownModeError{Mode: l.Command.Mode}}
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) streams() IO {
	s := r.IO
	if s.Stdin == nil {
		s.Stdin = os.Stdin
	}
	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}
	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}
	return s
}

// executable returns the file to run, searching the composed PATH when the
// command carries no path.
func executable(l *Launch) (string, error) {
	if l.Command.Path != "" {
		return l.Command.Path, nil
	}
	for _, dir := range filepath.SplitList(l.Env[envcompose.SystemPath]) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, l.Command.Name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() && info.Mode().Perm()&0o111 != 0 {
			return candidate, nil
		}
	}
	return "", &resolve.CommandNotFoundError{Name: l.Command.Name}
}
