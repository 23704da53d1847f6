// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/bundlerun/bundlerun/internal/resolve"
)

func TestReadShebang(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		args    []string
		wantErr error
	}{
		{name: "plain", input: "#!/bin/sh\necho", want: "/bin/sh"},
		{name: "with arg", input: "#!/bin/sh -e\n", want: "/bin/sh", args: []string{"-e"}},
		{name: "space after bang", input: "#! /bin/bash\n", want: "/bin/bash"},
		{name: "env", input: "#!/usr/bin/env sh\n", want: "sh"},
		{name: "env -S", input: "#!/usr/bin/env -S sh -x\n", want: "sh", args: []string{"-x"}},
		{name: "env -S joined", input: "#!/usr/bin/env -Ssh -x\n", want: "sh", args: []string{"-x"}},
		{name: "env assignment", input: "#!/usr/bin/env LANG=C ruby\n", want: "ruby"},
		{name: "no newline", input: "#!/bin/sh", want: "/bin/sh"},
		{name: "binary", input: "\x7fELF\x02\x01", wantErr: ErrNoShebang},
		{name: "empty shebang", input: "#!\n", wantErr: ErrNoShebang},
		{name: "bare env", input: "#!/usr/bin/env\n", wantErr: ErrNoShebang},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ReadShebang(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadShebang() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadShebang() error = %v", err)
			}
			if got.Interpreter != tt.want {
				t.Errorf("Interpreter = %q, want %q", got.Interpreter, tt.want)
			}
			if strings.Join(got.Args, " ") != strings.Join(tt.args, " ") {
				t.Errorf("Args = %v, want %v", got.Args, tt.args)
			}
		})
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/bin/sh-script":   "#!/bin/sh\necho hi\n",
		"/bin/env-script":  "#!/usr/bin/env sh\necho hi\n",
		"/bin/bash-script": "#!/bin/bash\necho hi\n",
		"/bin/binary":      "\x7fELF\x02\x01\x01",
		"/bin/empty":       "",
		"/bin/trapper":     "#!/bin/sh\ntrap 'echo trapped; exit 0' INT\nwhile :; do sleep 1; done\n",
		"/bin/exit-trap":   "#!/bin/sh\ntrap 'rm -f lock' EXIT\necho hi\n",
	}
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	base := Options{Fs: fs, LoadInterpreters: []string{"sh"}}

	tests := []struct {
		name string
		cmd  *resolve.Command
		opts Options
		want resolve.Mode
	}{
		{"sh shebang", &resolve.Command{Path: "/bin/sh-script"}, base, resolve.Load},
		{"env sh shebang", &resolve.Command{Path: "/bin/env-script"}, base, resolve.Load},
		{"foreign shebang", &resolve.Command{Path: "/bin/bash-script"}, base, resolve.Replace},
		{"binary", &resolve.Command{Path: "/bin/binary"}, base, resolve.Replace},
		{"empty file", &resolve.Command{Path: "/bin/empty"}, base, resolve.Load},
		{"signal trap", &resolve.Command{Path: "/bin/trapper"}, base, resolve.Replace},
		{"exit trap", &resolve.Command{Path: "/bin/exit-trap"}, base, resolve.Load},
		{"missing file", &resolve.Command{Path: "/bin/missing"}, base, resolve.Replace},
		{"no path", &resolve.Command{Name: "tool"}, base, resolve.Replace},
		{"self", &resolve.Command{Path: "/bin/sh-script", Self: true}, base, resolve.Replace},
		{"shell string", &resolve.Command{Path: "/bin/sh-script", Shell: true}, base, resolve.Replace},
		{
			"disable exec load",
			&resolve.Command{Path: "/bin/sh-script"},
			Options{Fs: fs, LoadInterpreters: []string{"sh"}, DisableExecLoad: true},
			resolve.Replace,
		},
		{
			"keep file descriptors",
			&resolve.Command{Path: "/bin/sh-script"},
			Options{Fs: fs, LoadInterpreters: []string{"sh"}, KeepFileDescriptors: true},
			resolve.Replace,
		},
		{
			"extra interpreter",
			&resolve.Command{Path: "/bin/bash-script"},
			Options{Fs: fs, LoadInterpreters: []string{"sh", "bash"}},
			resolve.Load,
		},
		{
			"no interpreters",
			&resolve.Command{Path: "/bin/sh-script"},
			Options{Fs: fs},
			resolve.Replace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Select(tt.cmd, tt.opts); got != tt.want {
				t.Errorf("Select() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrapsSignals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script string
		want   bool
	}{
		{"no trap", "echo hi\n", false},
		{"exit trap", "trap 'cleanup' EXIT\n", false},
		{"err and zero", "trap 'echo failed' ERR 0\n", false},
		{"interrupt", "trap 'exit 0' INT\n", true},
		{"sig prefix", "trap 'exit 0' SIGTERM\n", true},
		{"ignore", "trap '' USR1 TERM\n", true},
		{"mixed", "trap 'cleanup' EXIT HUP\n", true},
		{"reset", "trap INT\n", true},
		{"numeric", "trap 'exit 1' 2\n", true},
		{"dynamic spec", "trap 'exit 1' \"$sig\"\n", true},
		{"inside function", "main() {\n  trap 'exit 0' INT\n}\nmain\n", true},
		{"syntax error", "if then\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := TrapsSignals(strings.NewReader(tt.script), "script"); got != tt.want {
				t.Errorf("TrapsSignals(%q) = %v, want %v", tt.script, got, tt.want)
			}
		})
	}
}
