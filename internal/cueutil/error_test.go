// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"auto_install"}, "auto_install"},
		{[]string{"self_names", "0"}, "self_names[0]"},
		{[]string{"ui", "verbose"}, "ui.verbose"},
		{[]string{"0"}, "0"},
	}

	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "x.cue") != nil {
		t.Error("FormatError(nil) should be nil")
	}

	plain := FormatError(errors.New("boom"), "config.cue")
	if plain.Error() != "config.cue: boom" {
		t.Errorf("plain error = %q", plain)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString("#C: {auto_install?: bool}").LookupPath(cue.ParsePath("#C"))
	user := ctx.CompileString(`auto_install: "yes"`, cue.Filename("config.cue"))
	err := FormatError(schema.Unify(user).Validate(), "config.cue")
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !strings.HasPrefix(err.Error(), "config.cue: auto_install") {
		t.Errorf("FormatError() = %q, want path prefix", err)
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 10), 10, "a.cue"); err != nil {
		t.Errorf("at limit: %v", err)
	}
	if err := CheckFileSize(make([]byte, 11), 10, "a.cue"); err == nil {
		t.Error("over limit should fail")
	}
}
