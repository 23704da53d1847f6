// SPDX-License-Identifier: MPL-2.0

package binstub

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/bundlerun/bundlerun/pkg/bundle"
)

var rack = bundle.Package{Name: "rack", Version: "1.0.0", InstallRoot: "/gems/rack-1.0.0", Executables: []string{"rackup", "rack-console"}}

func mustGenerate(t *testing.T, fs afero.Fs, dir string, pkg bundle.Package, opts Options) *Result {
	t.Helper()
	res, err := Generate(fs, dir, pkg, opts)
	if err != nil {
		t.Fatalf("Generate(%s) error = %v", pkg.Name, err)
	}
	return res
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()

	res := mustGenerate(t, fs, "/app/bin", rack, Options{})
	if !slices.Equal(res.Written, []string{"/app/bin/rackup", "/app/bin/rack-console"}) {
		t.Errorf("Written = %v", res.Written)
	}
	if len(res.Skipped) != 0 {
		t.Errorf("Skipped = %v, want none", res.Skipped)
	}

	content, err := afero.ReadFile(fs, "/app/bin/rackup")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(content), "#!/bin/sh\n# bundlerun binstub: package=rack executable=rackup\n") {
		t.Errorf("binstub header:\n%s", content)
	}
	if want := `exec "${BUNDLERUN_BIN_PATH:-bundlerun}" exec -- rackup "$@"`; !strings.Contains(string(content), want) {
		t.Errorf("binstub does not contain %q:\n%s", want, content)
	}

	info, err := fs.Stat("/app/bin/rackup")
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}
}

func TestGenerate_ExistingFiles(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()

	if err := afero.WriteFile(fs, "/app/bin/rackup", []byte("#!/bin/sh\necho mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	mustGenerate(t, fs, "/app/bin", bundle.Package{Name: "rack_two", Executables: []string{"rack-console"}}, Options{})

	res := mustGenerate(t, fs, "/app/bin", rack, Options{})
	if len(res.Written) != 0 {
		t.Errorf("Written = %v, want none", res.Written)
	}
	skipped := slices.Sorted(slices.Values(res.Skipped))
	if !slices.Equal(skipped, []string{"/app/bin/rack-console", "/app/bin/rackup"}) {
		t.Errorf("Skipped = %v", res.Skipped)
	}

	if res := mustGenerate(t, fs, "/app/bin", rack, Options{Force: true}); len(res.Written) != 2 {
		t.Errorf("forced Written = %v, want both", res.Written)
	}

	info, err := Parse(fs, "/app/bin/rack-console")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if info != (Info{Package: "rack", Executable: "rack-console"}) {
		t.Errorf("Parse() = %+v", info)
	}

	// regenerating our own binstubs needs no force
	if res := mustGenerate(t, fs, "/app/bin", rack, Options{}); len(res.Written) != 2 {
		t.Errorf("regenerated Written = %v, want both", res.Written)
	}
}

func TestGenerate_NoExecutables(t *testing.T) {
	t.Parallel()

	_, err := Generate(afero.NewMemMapFs(), "/bin", bundle.Package{Name: "json"}, Options{})
	if !errors.Is(err, ErrNoExecutables) {
		t.Errorf("error = %v, want ErrNoExecutables", err)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()

	files := map[string]string{
		"/stub":      "#!/bin/sh\n# bundlerun binstub: package=rack executable=rackup\nexec x\n",
		"/late":      "#!/bin/sh\n#\n#\n#\n#\n# bundlerun binstub: package=rack executable=rackup\n",
		"/noshebang": "# bundlerun binstub: package=rack executable=rackup\n",
		"/plain":     "#!/bin/sh\necho hi\n",
		"/binary":    "\x7fELF\x02\x01\x01",
		"/empty":     "",
	}
	for name, content := range files {
		if err := afero.WriteFile(fs, name, []byte(content), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	info, err := Parse(fs, "/stub")
	if err != nil {
		t.Fatalf("Parse(/stub) error = %v", err)
	}
	if info != (Info{Package: "rack", Executable: "rackup"}) {
		t.Errorf("Parse(/stub) = %+v", info)
	}

	for _, name := range []string{"/late", "/noshebang", "/plain", "/binary", "/empty"} {
		if _, err := Parse(fs, name); !errors.Is(err, ErrNotBinstub) {
			t.Errorf("Parse(%s) error = %v, want ErrNotBinstub", name, err)
		}
	}

	if _, err := Parse(fs, "/missing"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Parse(/missing) error = %v, want not exist", err)
	}
}

// The generated script is valid sh and runs the package executable when
// invoked inside a bundle.
func TestGenerate_ScriptRunsInsideBundle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("binstubs are POSIX shell scripts")
	}
	t.Parallel()

	dir := t.TempDir()
	root := filepath.Join(dir, "gems", "rack-1.0.0")
	if err := os.MkdirAll(filepath.Join(root, "bin"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "bin", "rackup"), []byte("#!/bin/sh\necho \"rackup $*\"\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	mustGenerate(t, afero.NewOsFs(), filepath.Join(dir, "bin"), rack, Options{})

	cmd := exec.Command(filepath.Join(dir, "bin", "rackup"), "-p", "9292")
	cmd.Env = []string{
		"PATH=/usr/bin:/bin",
		"BUNDLERUN_LOCKFILE=" + filepath.Join(dir, "Bundlefile.lock"),
		"BUNDLERUN_PATH=/elsewhere:" + root,
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("rackup binstub failed: %v\n%s", err, out)
	}
	if string(out) != "rackup -p 9292\n" {
		t.Errorf("output = %q", out)
	}

	cmd = exec.Command(filepath.Join(dir, "bin", "rack-console"))
	cmd.Env = []string{"PATH=/usr/bin:/bin", "BUNDLERUN_LOCKFILE=x", "BUNDLERUN_PATH=" + root}
	out, err = cmd.CombinedOutput()
	if err == nil {
		t.Fatal("rack-console binstub should fail without the executable")
	}
	if !strings.Contains(string(out), "can't find executable rack-console for package rack") {
		t.Errorf("output = %q", out)
	}
}
