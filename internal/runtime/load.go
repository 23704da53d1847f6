// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/bundlerun/bundlerun/internal/envcompose"
	"github.com/bundlerun/bundlerun/pkg/types"
)

// FeatureExt is the file extension of features sourced before a loaded script.
const FeatureExt = ".sh"

// ErrFeatureNotFound is returned when a required feature is not on the library path.
var ErrFeatureNotFound = errors.New("feature not found")

// load runs a shell script inside the embedded interpreter.
func (r *Runner) load(ctx context.Context, l *Launch) Outcome {
	cmd := l.Command
	streams := r.streams()

	data, err := os.ReadFile(cmd.Path)
	if err != nil {
		return errorOutcome(err)
	}
	if len(data) == 0 {
		fmt.Fprintf(streams.Stderr, "%s is empty\n", cmd.Path)
		return Outcome{}
	}

	prog, err := syntax.NewParser().Parse(bytes.NewReader(data), cmd.Literal)
	if err != nil {
		return loadFailure(l, err)
	}

	features, err := r.features(l)
	if err != nil {
		return loadFailure(l, err)
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(l.Env.Slice()...)),
		interp.StdIO(streams.Stdin, streams.Stdout, streams.Stderr),
		// "--" ends option parsing so arguments like "-v" stay positional.
		interp.Params(append([]string{"--"}, cmd.Args...)...),
	}
	if l.WorkDir != "" {
		opts = append(opts, interp.Dir(l.WorkDir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return loadFailure(l, fmt.Errorf("failed to create interpreter: %w", err))
	}

	// An interrupt stops the script; the interpreter passes it on to the
	// command it is waiting for.
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	disp := AcquireDisposition(r.logger())
	defer disp.Release()
	disp.Deliver(func(sig os.Signal) {
		r.logger().Debug("interrupting loaded command", "signal", sig)
		cancel(&interruptedError{sig: sig})
	})

	for _, f := range features {
		r.logger().Debug("sourcing feature", "file", f.Name)
		if err := runner.Run(ctx, f); err != nil {
			return scriptOutcome(ctx, l, err)
		}
		if runner.Exited() {
			return Outcome{}
		}
	}

	return scriptOutcome(ctx, l, runner.Run(ctx, prog))
}

// features parses the -r features named in BUNDLERUN_OPT, found in the
// BUNDLERUN_LIB directories.
func (r *Runner) features(l *Launch) ([]*syntax.File, error) {
	names, err := envcompose.RequiredFeatures(l.Env[envcompose.OptVar])
	if err != nil {
		return nil, err
	}
	dirs := filepath.SplitList(l.Env[envcompose.LibVar])

	files := make([]*syntax.File, 0, len(names))
	for _, name := range names {
		path, err := findFeature(dirs, name)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read feature %s: %w", name, err)
		}
		f, err := syntax.NewParser().Parse(bytes.NewReader(data), path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func findFeature(dirs []string, name string) (string, error) {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, filepath.FromSlash(name)+FeatureExt)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: cannot load such file -- %s", ErrFeatureNotFound, name)
}

// scriptOutcome converts the result of an interpreter run.
func scriptOutcome(ctx context.Context, l *Launch, err error) Outcome {
	var interrupted *interruptedError
	if errors.As(context.Cause(ctx), &interrupted) {
		return Outcome{ExitCode: types.FromSignal(interrupted.signum()), Signal: interrupted.sig}
	}
	if err == nil {
		return Outcome{}
	}
	var status interp.ExitStatus
	if errors.As(err, &status) {
		return Outcome{ExitCode: types.ExitCode(status)}
	}
	return loadFailure(l, err)
}

func loadFailure(l *Launch, err error) Outcome {
	le := &LoadError{Path: l.Command.Path, Literal: l.Command.Literal, Err: err}
	var parseErr syntax.ParseError
	if errors.As(err, &parseErr) {
		le.Location = fmt.Sprintf("%s:%s", parseErr.Filename, parseErr.Pos)
	}
	return Outcome{ExitCode: le.ExitCode(), Err: le}
}
