// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"os/exec"
	"syscall"

	"github.com/bundlerun/bundlerun/pkg/types"
)

// spawn runs the command as a child and waits for it. The child is not tied
// to ctx: only its exit ends the wait.
func (r *Runner) spawn(_ context.Context, l *Launch) Outcome {
	path, err := executable(l)
	if err != nil {
		return errorOutcome(err)
	}

	cmd := exec.Command(path)
	cmd.Args = l.Command.Argv()
	cmd.Env = l.Env.Slice()
	cmd.Dir = l.WorkDir
	streams := r.streams()
	cmd.Stdin, cmd.Stdout, cmd.Stderr = streams.Stdin, streams.Stdout, streams.Stderr
	if l.KeepFileDescriptors {
		files, err := inheritedFiles()
		if err != nil {
			return errorOutcome(err)
		}
		cmd.ExtraFiles = files
	} else if err := closeInheritedOnExec(); err != nil {
		return errorOutcome(err)
	}

	disp := AcquireDisposition(r.logger())
	defer disp.Release()

	if err := cmd.Start(); err != nil {
		return errorOutcome(err)
	}
	disp.Started(cmd.Process)

	return waitOutcome(cmd.Wait())
}

// waitOutcome converts the result of Wait into an Outcome.
func waitOutcome(err error) Outcome {
	if err == nil {
		return Outcome{}
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return Outcome{ExitCode: types.ExitFailure, Err: err}
	}

	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		sig := ws.Signal()
		return Outcome{ExitCode: types.FromSignal(int(sig)), Signal: sig}
	}

	code := types.ExitCode(exitErr.ExitCode())
	if validateErr := code.Validate(); validateErr != nil {
		return Outcome{ExitCode: types.ExitFailure, Err: validateErr}
	}
	return Outcome{ExitCode: code}
}

// Success reports whether the launch exited with status 0.
func (o Outcome) Success() bool { return o.ExitCode.IsSuccess() && o.Err == nil }

// Signaled reports whether the child was killed by a signal.
func (o Outcome) Signaled() bool { return o.Signal != nil }

