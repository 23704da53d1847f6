// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/bundlerun/bundlerun/internal/config"
	"github.com/bundlerun/bundlerun/internal/envcompose"
	"github.com/bundlerun/bundlerun/internal/execargs"
	"github.com/bundlerun/bundlerun/internal/issue"
	"github.com/bundlerun/bundlerun/internal/launch"
	"github.com/bundlerun/bundlerun/internal/resolve"
	"github.com/bundlerun/bundlerun/internal/runtime"
	"github.com/bundlerun/bundlerun/internal/shim"
	"github.com/bundlerun/bundlerun/pkg/bundle"
)

type (
	// Request is one `bundlerun exec` invocation. It is built once and
	// consumed once.
	Request struct {
		// Args are the raw arguments following "exec".
		Args []string
		// WorkDir is the invocation's working directory.
		WorkDir string
		// Env is the inherited environment.
		Env map[string]string
	}

	// Engine runs exec requests.
	Engine struct {
		// Config is the loaded configuration; nil means defaults.
		Config *config.Config
		// Resolver provides the resolved environment of a manifest.
		Resolver bundle.Resolver
		// Installer installs missing packages when auto_install is set.
		Installer bundle.Installer
		// Runner launches the resolved command.
		Runner *runtime.Runner
		// Fs is the filesystem commands are resolved on; nil means the OS.
		Fs afero.Fs
		// SelfPath is the engine executable.
		SelfPath string
		// Stdout and Stderr receive installer output and warnings.
		Stdout io.Writer
		Stderr io.Writer
		// Help prints the exec help page.
		Help func() error
		// EnableVerbose is called when --verbose is given before the command.
		EnableVerbose func()
		Logger        *slog.Logger
	}
)

// Run executes a request. The returned error, if any, is also the
// outcome's Err; the outcome's exit code is what the engine exits with.
func (e *Engine) Run(ctx context.Context, req Request) (runtime.Outcome, error) {
	inv, err := execargs.Partition(req.Args)
	if err != nil {
		return fail(err)
	}
	if inv.Flags.Verbose && e.EnableVerbose != nil {
		e.EnableVerbose()
	}
	if inv.Flags.Help {
		if e.Help != nil {
			if err := e.Help(); err != nil {
				return fail(err)
			}
		}
		return runtime.Outcome{}, nil
	}

	cfg := e.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	keepFDs := inv.Flags.KeepFileDescriptors || cfg.KeepFileDescriptors

	manifest, err := ManifestPath(inv.Flags.Manifest, cfg, req.WorkDir, req.Env)
	if err != nil {
		return fail(err)
	}
	e.logger().Debug("using manifest", "path", manifest)

	env, err := e.environment(ctx, manifest, req, cfg)
	if err != nil {
		return fail(err)
	}

	runtimeDir, err := cfg.ResolveRuntimeDir()
	if err != nil {
		return fail(err)
	}
	if _, err := shim.Ensure(runtimeDir); err != nil {
		return fail(err)
	}

	composed, err := envcompose.Compose(req.Env, env, envcompose.Options{
		ShimDir:    runtimeDir,
		PathSystem: cfg.PathSystem,
		SelfPath:   e.SelfPath,
	})
	if err != nil {
		return fail(err)
	}

	resolver := &resolve.Resolver{
		Fs:        e.Fs,
		Env:       env,
		Path:      composed[envcompose.SystemPath],
		WorkDir:   req.WorkDir,
		SelfNames: cfg.SelfNames,
		SelfPath:  e.SelfPath,
		Logger:    e.logger(),
	}
	cmd, err := resolver.Resolve(inv.Command, inv.Args)
	if err != nil {
		return fail(err)
	}
	for _, w := range cmd.Warnings {
		fmt.Fprintln(e.stderr(), w)
	}

	mode := launch.Select(cmd, launch.Options{
		Fs:                  e.Fs,
		DisableExecLoad:     cfg.DisableExecLoad,
		KeepFileDescriptors: keepFDs,
		LoadInterpreters:    cfg.LoadInterpreters,
	})
	cmd = cmd.WithMode(mode)
	e.logger().Debug("launching", "command", cmd.Name, "path", cmd.Path, "mode", mode)

	outcome := e.runner().Run(ctx, &runtime.Launch{
		Command:             cmd,
		Env:                 composed,
		WorkDir:             req.WorkDir,
		KeepFileDescriptors: keepFDs,
	})
	return outcome, outcome.Err
}

// ManifestPath applies manifest precedence: the --manifest flag, then the
// configuration, then BUNDLERUN_MANIFEST, then an upward search from workDir
// for the default manifest. Relative paths are taken from workDir.
func ManifestPath(flag string, cfg *config.Config, workDir string, env map[string]string) (string, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	for _, candidate := range []string{flag, cfg.Manifest, env[envcompose.ManifestVar]} {
		if candidate == "" {
			continue
		}
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(workDir, candidate)
		}
		return candidate, nil
	}

	manifest, err := bundle.FindManifest(workDir)
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("find manifest").
			WithResource(workDir).
			WithSuggestion("Run the command from a directory containing a " + bundle.ManifestName).
			WithSuggestion("Pass an explicit manifest with --manifest <path>").
			WithIssue(issue.ManifestNotFoundId).
			Wrap(err).
			BuildError()
	}
	return manifest, nil
}

// environment resolves the manifest and installs missing packages when
// configured to, unless this invocation is nested inside the same bundle.
func (e *Engine) environment(ctx context.Context, manifest string, req Request, cfg *config.Config) (*bundle.Environment, error) {
	env, err := e.Resolver.Resolve(ctx, manifest)
	if err != nil {
		return nil, resolveError(manifest, err)
	}

	missing := env.Missing()
	if len(missing) == 0 {
		return env, nil
	}
	names := make([]string, 0, len(missing))
	for _, p := range missing {
		names = append(names, p.FullName())
	}
	e.logger().Debug("packages missing on disk", "packages", names)

	if !cfg.AutoInstall || e.Installer == nil {
		return env, nil
	}
	if envcompose.Nested(req.Env, env.Lockfile) {
		e.logger().Debug("skipping auto-install inside a nested invocation", "lockfile", env.Lockfile)
		return env, nil
	}

	if err := e.Installer.Install(ctx, manifest, e.stdout(), e.stderr()); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("install missing packages").
			WithResource(manifest).
			WithSuggestion("Check the install_command setting").
			WithSuggestion("Run `bundlerun install` to see the installer's full output").
			WithIssue(issue.InstallFailedId).
			Wrap(err).
			BuildError()
	}

	env, err = e.Resolver.Resolve(ctx, manifest)
	if err != nil {
		return nil, resolveError(manifest, err)
	}
	return env, nil
}

// LoadEnvironment resolves manifest without installing anything.
func LoadEnvironment(ctx context.Context, r bundle.Resolver, manifest string) (*bundle.Environment, error) {
	env, err := r.Resolve(ctx, manifest)
	if err != nil {
		return nil, resolveError(manifest, err)
	}
	return env, nil
}

func resolveError(manifest string, err error) error {
	ec := issue.NewErrorContext().
		WithOperation("load bundle").
		WithResource(manifest).
		Wrap(err)
	switch {
	case errors.Is(err, bundle.ErrManifestNotFound):
		ec.WithIssue(issue.ManifestNotFoundId).
			WithSuggestion("Check the --manifest path or the manifest setting")
	case errors.Is(err, bundle.ErrInvalidLockfile):
		ec.WithIssue(issue.LockfileInvalidId).
			WithSuggestion("Regenerate the lockfile with `bundlerun install`")
	case errors.Is(err, os.ErrNotExist):
		ec.WithIssue(issue.LockfileInvalidId).
			WithSuggestion("Resolve the bundle with `bundlerun install` to create " + bundle.LockfilePath(manifest))
	}
	return ec.BuildError()
}

// fail turns a pre-launch error into an outcome carrying its exit code.
func fail(err error) (runtime.Outcome, error) {
	out := runtime.Outcome{ExitCode: ExitCodeOf(err), Err: err}
	return out, err
}

func (e *Engine) runner() *runtime.Runner {
	if e.Runner == nil {
		return runtime.NewRunner(true)
	}
	return e.Runner
}

func (e *Engine) stdout() io.Writer {
	if e.Stdout == nil {
		return os.Stdout
	}
	return e.Stdout
}

func (e *Engine) stderr() io.Writer {
	if e.Stderr == nil {
		return os.Stderr
	}
	return e.Stderr
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}
