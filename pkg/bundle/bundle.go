// SPDX-License-Identifier: MPL-2.0

// Package bundle describes a resolved dependency environment.
//
// A bundle is the set of packages a prior resolution step selected for a
// project, recorded in the lockfile next to the project's manifest
// ("Bundlefile" and "Bundlefile.lock"). Each package has an install root;
// its executables live in the root's "bin" directory.
//
// The exec engine only reads an Environment. Producing one is the job of a
// Resolver, and materialising missing install roots is the job of an
// Installer; both are external collaborators of the engine.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
)

const (
	// ManifestName is the default manifest file name.
	ManifestName = "Bundlefile"
	// LockfileSuffix is appended to the manifest path to locate its lockfile.
	LockfileSuffix = ".lock"
	// BinDirName is the directory under an install root holding executables.
	BinDirName = "bin"
)

// ErrManifestNotFound is returned when no manifest exists in the directory
// hierarchy being searched.
var ErrManifestNotFound = errors.New("manifest not found")

type (
	// Package is one activated package of a resolved environment.
	Package struct {
		// Name is the package name, unique within an Environment.
		Name string
		// Version is the resolved version.
		Version string
		// InstallRoot is the absolute path of the installed package tree.
		InstallRoot string
		// Executables lists the executable names the package declares.
		Executables []string
	}

	// Environment is an immutable snapshot of a resolution.
	Environment struct {
		// Packages is ordered by resolution order.
		Packages []Package
		// Lockfile is the absolute lockfile path; it identifies the resolution.
		Lockfile string
		// Manifest is the absolute manifest path the lockfile belongs to.
		Manifest string
	}

	// Resolver produces the resolved environment for a manifest.
	Resolver interface {
		Resolve(ctx context.Context, manifest string) (*Environment, error)
	}

	// Installer installs the packages of a manifest that are missing on disk.
	// Output is streamed to the given writers, never buffered.
	Installer interface {
		Install(ctx context.Context, manifest string, stdout, stderr io.Writer) error
	}
)

// FullName returns "name-version", the conventional install directory name.
func (p Package) FullName() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "-" + p.Version
}

// BinDir returns the directory holding the package's executables.
func (p Package) BinDir() string {
	return filepath.Join(p.InstallRoot, BinDirName)
}

// Provides reports whether the package declares the named executable.
func (p Package) Provides(executable string) bool {
	return slices.Contains(p.Executables, executable)
}

// ExecutablePath returns the on-disk location of one of the package's executables.
func (p Package) ExecutablePath(executable string) string {
	return filepath.Join(p.BinDir(), executable)
}

// Lookup returns the package with the given name.
func (e *Environment) Lookup(name string) (Package, bool) {
	for _, p := range e.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return Package{}, false
}

// Provider returns the package declaring the named executable. The resolver
// guarantees at most one active provider per name.
func (e *Environment) Provider(executable string) (Package, bool) {
	for _, p := range e.Packages {
		if p.Provides(executable) {
			return p, true
		}
	}
	return Package{}, false
}

// InstallRoots returns the install roots in resolution order.
func (e *Environment) InstallRoots() []string {
	roots := make([]string, 0, len(e.Packages))
	for _, p := range e.Packages {
		roots = append(roots, p.InstallRoot)
	}
	return roots
}

// BinDirs returns each package's bin directory in resolution order.
func (e *Environment) BinDirs() []string {
	dirs := make([]string, 0, len(e.Packages))
	for _, p := range e.Packages {
		dirs = append(dirs, p.BinDir())
	}
	return dirs
}

// Missing returns the packages whose install root does not exist.
func (e *Environment) Missing() []Package {
	var missing []Package
	for _, p := range e.Packages {
		if info, err := os.Stat(p.InstallRoot); err != nil || !info.IsDir() {
			missing = append(missing, p)
		}
	}
	return missing
}

// LockfilePath returns the lockfile path belonging to a manifest.
func LockfilePath(manifest string) string {
	return manifest + LockfileSuffix
}

// FindManifest walks from dir up to the filesystem root looking for the
// default manifest file and returns its absolute path.
func FindManifest(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	for {
		candidate := filepath.Join(abs, ManifestName)
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("%w: no %s in %s or any parent directory", ErrManifestNotFound, ManifestName, dir)
		}
		abs = parent
	}
}
