// SPDX-License-Identifier: MPL-2.0

package shim

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"
	"testing"
)

func TestEnsure_WritesFeature(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := Ensure(dir)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if want := filepath.Join(dir, "bundlerun", "setup.sh"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, Script()) {
		t.Error("written feature differs from the embedded script")
	}
}

func TestEnsure_ReplacesStaleFeature(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := Path(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("# old\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Ensure(dir); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if !bytes.Equal(data, Script()) {
		t.Errorf("stale feature not replaced: %q", data)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), SetupFile+".") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestEnsure_Concurrent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Ensure(dir); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Ensure() error = %v", err)
	}
}

func TestEnsure_UnwritableDir(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Ensure(file); err == nil {
		t.Error("expected error when the runtime directory is a file")
	}
}

func TestSetupScript(t *testing.T) {
	if goruntime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	t.Parallel()

	dir := t.TempDir()
	path, err := Ensure(dir)
	if err != nil {
		t.Fatal(err)
	}
	lockfile := filepath.Join(dir, "Bundlefile.lock")
	if err := os.WriteFile(lockfile, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		env     []string
		wantErr string
	}{
		{"inside bundle", []string{"BUNDLERUN_LOCKFILE=" + lockfile}, ""},
		{"outside bundle", []string{}, "BUNDLERUN_LOCKFILE is unset"},
		{"missing lockfile", []string{"BUNDLERUN_LOCKFILE=" + lockfile + ".gone"}, "does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := exec.Command("/bin/sh", "-c", `. "$1" && echo sourced`, "sh", path)
			cmd.Env = tt.env
			var stdout, stderr bytes.Buffer
			cmd.Stdout, cmd.Stderr = &stdout, &stderr
			err := cmd.Run()

			if tt.wantErr == "" {
				if err != nil || strings.TrimSpace(stdout.String()) != "sourced" {
					t.Errorf("err = %v, stdout = %q, stderr = %q", err, stdout.String(), stderr.String())
				}
				return
			}
			if err == nil || !strings.Contains(stderr.String(), tt.wantErr) {
				t.Errorf("err = %v, stderr = %q, want %q", err, stderr.String(), tt.wantErr)
			}
		})
	}
}
