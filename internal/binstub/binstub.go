// SPDX-License-Identifier: MPL-2.0

// Package binstub generates and inspects binstubs: small POSIX shell
// launchers that run one executable of one package inside the bundle.
//
// Every binstub carries a metadata line naming the package it was generated
// for, which lets exec detect a binstub created for a different package.
package binstub

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/bundlerun/bundlerun/pkg/bundle"

	"github.com/spf13/afero"
)

// metadataScanLines bounds how far into a file Parse looks for the marker.
const metadataScanLines = 5

var (
	// ErrNotBinstub is returned by Parse for files without binstub metadata.
	ErrNotBinstub = errors.New("not a binstub")
	// ErrNoExecutables is returned when a package declares no executables.
	ErrNoExecutables = errors.New("package has no executables")

	metadataPattern = regexp.MustCompile(`^# bundlerun binstub: package=(\S+) executable=(\S+)\s*$`)

	stubTemplate = template.Must(template.New("binstub").Parse(`#!/bin/sh
# bundlerun binstub: package={{.Package}} executable={{.Executable}}
#
# Generated by bundlerun. Runs {{.Executable}} from package {{.Package}}
# inside the bundle of the current project.
if [ -n "${BUNDLERUN_LOCKFILE:-}" ]; then
	IFS='{{.ListSeparator}}'
	for root in ${BUNDLERUN_PATH:-}; do
		case "${root##*/}" in
		{{.Package}} | {{.Package}}-[0-9]*)
			if [ -x "$root/bin/{{.Executable}}" ]; then
				exec "$root/bin/{{.Executable}}" "$@"
			fi
			;;
		esac
	done
	echo "bundlerun: can't find executable {{.Executable}} for package {{.Package}}" >&2
	exit 1
fi
exec "${BUNDLERUN_BIN_PATH:-bundlerun}" exec -- {{.Executable}} "$@"
`))
)

type (
	// Info is the metadata recorded in a binstub.
	Info struct {
		Package    string
		Executable string
	}

	// Options configure Generate.
	Options struct {
		// Force overwrites existing files that are not binstubs of the package.
		Force bool
	}

	// Result lists what Generate did.
	Result struct {
		Written []string
		// Skipped are existing files left alone because Force was not set.
		Skipped []string
	}
)

// Generate writes one binstub per executable of pkg into dir.
// Existing binstubs of the same package are regenerated.
func Generate(fs afero.Fs, dir string, pkg bundle.Package, opts Options) (*Result, error) {
	if len(pkg.Executables) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoExecutables, pkg.Name)
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create binstub directory: %w", err)
	}

	result := &Result{}
	for _, exe := range pkg.Executables {
		path := filepath.Join(dir, exe)

		if !opts.Force {
			info, err := Parse(fs, path)
			switch {
			case err == nil && info.Package == pkg.Name:
				// regenerate our own
			case errors.Is(err, os.ErrNotExist):
			default:
				result.Skipped = append(result.Skipped, path)
				continue
			}
		}

		var buf bytes.Buffer
		if err := stubTemplate.Execute(&buf, map[string]string{
			"Package":       pkg.Name,
			"Executable":    exe,
			"ListSeparator": string(os.PathListSeparator),
		}); err != nil {
			return nil, fmt.Errorf("failed to render binstub %s: %w", exe, err)
		}
		if err := afero.WriteFile(fs, path, buf.Bytes(), 0o755); err != nil {
			return nil, fmt.Errorf("failed to write binstub: %w", err)
		}
		// WriteFile keeps the mode of an existing file
		if err := fs.Chmod(path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to make binstub executable: %w", err)
		}
		result.Written = append(result.Written, path)
	}
	return result, nil
}

// Parse reads the binstub metadata of the file at path. It returns
// ErrNotBinstub for any other file.
func Parse(fs afero.Fs, path string) (Info, error) {
	f, err := fs.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	return parseReader(f)
}

func parseReader(r io.Reader) (Info, error) {
	scanner := bufio.NewScanner(r)
	for i := 0; i < metadataScanLines && scanner.Scan(); i++ {
		line := scanner.Text()
		if i == 0 && !strings.HasPrefix(line, "#!") {
			break
		}
		if m := metadataPattern.FindStringSubmatch(line); m != nil {
			return Info{Package: m[1], Executable: m[2]}, nil
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, bufio.ErrTooLong) {
		return Info{}, err
	}
	return Info{}, ErrNotBinstub
}
