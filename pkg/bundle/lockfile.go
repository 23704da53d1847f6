// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidLockfile is the sentinel error wrapped by InvalidLockfileError.
var ErrInvalidLockfile = errors.New("invalid lockfile")

type (
	// LockfileResolver reads the resolution recorded in a manifest's TOML
	// lockfile. It never resolves anything itself.
	LockfileResolver struct{}

	// ValidationIssue is a single problem found in a lockfile.
	ValidationIssue struct {
		// Package is the offending package name, if any.
		Package string
		// Message describes the problem.
		Message string
	}

	// InvalidLockfileError collects every problem found in a lockfile.
	InvalidLockfileError struct {
		Path   string
		Issues []ValidationIssue
	}

	lockfileDocument struct {
		Packages []lockedPackage `toml:"package"`
	}

	lockedPackage struct {
		Name        string   `toml:"name"`
		Version     string   `toml:"version"`
		InstallRoot string   `toml:"install_root"`
		Executables []string `toml:"executables"`
	}
)

// Error implements the error interface for ValidationIssue.
func (v ValidationIssue) Error() string {
	if v.Package != "" {
		return fmt.Sprintf("package %s: %s", v.Package, v.Message)
	}
	return v.Message
}

// Error implements the error interface.
func (e *InvalidLockfileError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		msgs = append(msgs, issue.Error())
	}
	return fmt.Sprintf("invalid lockfile %s: %s", e.Path, strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidLockfile for errors.Is() compatibility.
func (e *InvalidLockfileError) Unwrap() error { return ErrInvalidLockfile }

// NewLockfileResolver creates a resolver backed by lockfiles on disk.
func NewLockfileResolver() *LockfileResolver {
	return &LockfileResolver{}
}

// Resolve reads the lockfile of the given manifest.
func (r *LockfileResolver) Resolve(ctx context.Context, manifest string) (*Environment, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("resolve canceled: %w", ctx.Err())
	default:
	}

	manifest, err := filepath.Abs(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}
	if _, err := os.Stat(manifest); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, manifest)
	}

	lockPath := LockfilePath(manifest)
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}

	return ParseLockfile(data, lockPath, manifest)
}

// ParseLockfile decodes lockfile content. Relative install roots are
// resolved against the lockfile's directory.
func ParseLockfile(data []byte, lockPath, manifest string) (*Environment, error) {
	var doc lockfileDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("%s:%d:%d: %w", lockPath, row, col, err)
		}
		return nil, fmt.Errorf("failed to parse lockfile %s: %w", lockPath, err)
	}

	env := &Environment{
		Lockfile: lockPath,
		Manifest: manifest,
		Packages: make([]Package, 0, len(doc.Packages)),
	}

	baseDir := filepath.Dir(lockPath)
	var issues []ValidationIssue
	seenNames := make(map[string]struct{})
	providers := make(map[string]string)

	for i, lp := range doc.Packages {
		if strings.TrimSpace(lp.Name) == "" {
			issues = append(issues, ValidationIssue{Message: fmt.Sprintf("package #%d has no name", i+1)})
			continue
		}
		if _, dup := seenNames[lp.Name]; dup {
			issues = append(issues, ValidationIssue{Package: lp.Name, Message: "listed more than once"})
			continue
		}
		seenNames[lp.Name] = struct{}{}

		if lp.InstallRoot == "" {
			issues = append(issues, ValidationIssue{Package: lp.Name, Message: "install_root is required"})
			continue
		}
		root := lp.InstallRoot
		if !filepath.IsAbs(root) {
			root = filepath.Join(baseDir, root)
		}

		for _, exe := range lp.Executables {
			if exe == "" || strings.ContainsRune(exe, filepath.Separator) {
				issues = append(issues, ValidationIssue{Package: lp.Name, Message: fmt.Sprintf("invalid executable name %q", exe)})
				continue
			}
			if owner, taken := providers[exe]; taken {
				issues = append(issues, ValidationIssue{
					Package: lp.Name,
					Message: fmt.Sprintf("executable %q is already provided by %s", exe, owner),
				})
				continue
			}
			providers[exe] = lp.Name
		}

		env.Packages = append(env.Packages, Package{
			Name:        lp.Name,
			Version:     lp.Version,
			InstallRoot: filepath.Clean(root),
			Executables: append([]string(nil), lp.Executables...),
		})
	}

	if len(issues) > 0 {
		return nil, &InvalidLockfileError{Path: lockPath, Issues: issues}
	}
	return env, nil
}
