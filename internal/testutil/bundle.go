// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bundlerun/bundlerun/pkg/bundle"
)

// FakePackage describes a package installed by NewFakeBundle.
type FakePackage struct {
	Name    string
	Version string
	// Executables maps executable names to script bodies.
	Executables map[string]string
	// NotInstalled leaves the install root missing on disk.
	NotInstalled bool
}

// NewFakeBundle lays out a project under dir: a Bundlefile, its lockfile and
// one install root per package below dir/gems. It returns the manifest path.
func NewFakeBundle(t testing.TB, dir string, pkgs ...FakePackage) string {
	t.Helper()

	manifest := MustWriteFile(t, filepath.Join(dir, bundle.ManifestName), "# test bundle\n", 0o644)

	var lock strings.Builder
	for _, p := range pkgs {
		root := filepath.Join("gems", p.Name+"-"+p.Version)
		names := make([]string, 0, len(p.Executables))
		for name, body := range p.Executables {
			names = append(names, fmt.Sprintf("%q", name))
			if !p.NotInstalled {
				MustWriteScript(t, filepath.Join(dir, root, bundle.BinDirName, name), body)
			}
		}
		if !p.NotInstalled {
			MustMkdirAll(t, filepath.Join(dir, root), 0o755)
		}
		fmt.Fprintf(&lock, "[[package]]\nname = %q\nversion = %q\ninstall_root = %q\nexecutables = [%s]\n\n",
			p.Name, p.Version, root, strings.Join(names, ", "))
	}
	MustWriteFile(t, bundle.LockfilePath(manifest), lock.String(), 0o644)

	return manifest
}
