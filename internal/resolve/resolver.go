// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/bundlerun/bundlerun/internal/binstub"
	"github.com/bundlerun/bundlerun/pkg/bundle"
	"github.com/bundlerun/bundlerun/pkg/platform"
)

// shellMetacharacters turn a single command string into a shell command.
const shellMetacharacters = "|&;<>()$`\\\"'*?[]#~=%{}"

// DefaultShell runs shell command strings when no sh is found on PATH.
const DefaultShell = "/bin/sh"

// Resolver maps command names to files inside a resolved environment.
type Resolver struct {
	// Fs is the filesystem searched. Nil means the OS filesystem.
	Fs afero.Fs
	// Env is the resolved environment. Nil behaves as an empty bundle.
	Env *bundle.Environment
	// Path is the composed PATH value.
	Path string
	// WorkDir anchors names containing a path separator.
	WorkDir string
	// SelfNames are the engine's own command names.
	SelfNames []string
	// SelfPath is the engine's own executable.
	SelfPath string
	// Logger receives debug traces. Nil means slog.Default().
	Logger *slog.Logger
}

// Resolve finds the command to run for name.
func (r *Resolver) Resolve(name string, args []string) (*Command, error) {
	if name == "" {
		return nil, &CommandNotFoundError{Name: name}
	}

	if len(args) == 0 && isShellString(name) && !r.isExistingPath(name) {
		return r.resolveShell(name), nil
	}

	if slices.Contains(r.SelfNames, name) && r.SelfPath != "" {
		r.logger().Debug("resolved to self", "name", name, "path", r.SelfPath)
		return &Command{Name: name, Path: r.SelfPath, Literal: name, Args: cloneArgs(args), Self: true}, nil
	}

	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		return r.resolvePath(name, args)
	}

	provider, hasProvider := r.provider(name)
	if hasProvider {
		p := provider.ExecutablePath(name)
		if info, err := r.fs().Stat(p); err == nil && !info.IsDir() {
			if !isExecutable(info) {
				return nil, &NotExecutableError{Name: name, Path: p}
			}
			r.logger().Debug("resolved package executable", "name", name, "package", provider.Name, "path", p)
			return &Command{Name: name, Path: p, Literal: name, Package: provider.Name, Args: cloneArgs(args)}, nil
		}
	}

	found, nonExec := r.search(name)
	if found == "" {
		if nonExec != "" {
			return nil, &NotExecutableError{Name: name, Path: nonExec}
		}
		return nil, &CommandNotFoundError{Name: name}
	}

	cmd := &Command{Name: name, Path: found, Literal: name, Args: cloneArgs(args)}

	info, err := binstub.Parse(r.fs(), found)
	switch {
	case err == nil:
		cmd.Package = info.Package
		if hasProvider && info.Package != provider.Name {
			cmd.Warnings = append(cmd.Warnings, conflictWarning(provider.Name, info.Package))
		}
		if !hasProvider && !r.inBundle(info.Package) {
			return nil, &NotInBundleError{Name: name, Package: info.Package, Path: found}
		}
	case errors.Is(err, binstub.ErrNotBinstub):
		if hasProvider {
			cmd.Package = provider.Name
		}
	default:
		return nil, fmt.Errorf("failed to inspect %s: %w", found, err)
	}

	r.logger().Debug("resolved on PATH", "name", name, "path", found, "package", cmd.Package)
	return cmd, nil
}

func (r *Resolver) resolveShell(command string) *Command {
	sh, _ := r.search("sh")
	if sh == "" {
		sh = DefaultShell
	}
	r.logger().Debug("resolved shell command", "shell", sh, "command", command)
	return &Command{Name: command, Path: sh, Literal: "sh", Args: []string{"-c", command}, Shell: true}
}

func (r *Resolver) resolvePath(name string, args []string) (*Command, error) {
	p := r.absolute(name)
	info, err := r.fs().Stat(p)
	if err != nil {
		return nil, &CommandNotFoundError{Name: name}
	}
	if info.IsDir() || !isExecutable(info) {
		return nil, &NotExecutableError{Name: name, Path: p}
	}
	return &Command{Name: name, Path: p, Literal: name, Args: cloneArgs(args)}, nil
}

// search walks PATH and returns the first executable file named name, or
// the first non-executable match when there is no executable one.
func (r *Resolver) search(name string) (found, nonExec string) {
	for _, dir := range filepath.SplitList(r.Path) {
		if dir == "" {
			dir = "."
		}
		candidate := r.absolute(filepath.Join(dir, name))
		info, err := r.fs().Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if isExecutable(info) {
			return candidate, ""
		}
		if nonExec == "" {
			nonExec = candidate
		}
	}
	return "", nonExec
}

func (r *Resolver) isExistingPath(name string) bool {
	if !strings.ContainsRune(name, '/') {
		return false
	}
	_, err := r.fs().Stat(r.absolute(name))
	return err == nil
}

func (r *Resolver) absolute(p string) string {
	if filepath.IsAbs(p) || r.WorkDir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(r.WorkDir, p)
}

func (r *Resolver) provider(name string) (bundle.Package, bool) {
	if r.Env == nil {
		return bundle.Package{}, false
	}
	return r.Env.Provider(name)
}

func (r *Resolver) inBundle(pkg string) bool {
	if r.Env == nil {
		return false
	}
	_, ok := r.Env.Lookup(pkg)
	return ok
}

func (r *Resolver) fs() afero.Fs {
	if r.Fs == nil {
		return afero.NewOsFs()
	}
	return r.Fs
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// conflictWarning names the package the bundle resolved the executable to,
// then the package the binstub found on PATH was generated for.
func conflictWarning(resolvedOwner, shimOwner string) string {
	return fmt.Sprintf("bundlerun is using a binstub that was created for a different package (%s).\n"+
		"You should run `bundlerun binstub %s` to work around a system/bundle conflict.", resolvedOwner, shimOwner)
}

func isShellString(s string) bool {
	return strings.ContainsAny(s, " \t\n") || strings.ContainsAny(s, shellMetacharacters)
}

func isExecutable(info fs.FileInfo) bool {
	if !platform.HasExecBit() {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

func cloneArgs(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	return append([]string(nil), args...)
}
