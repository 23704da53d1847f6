// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestExitCodeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     ExitCode
		wantValid bool
	}{
		{name: "zero is valid", value: 0, wantValid: true},
		{name: "one is valid", value: 1, wantValid: true},
		{name: "125 is valid", value: 125, wantValid: true},
		{name: "126 is valid", value: 126, wantValid: true},
		{name: "255 is valid", value: 255, wantValid: true},
		{name: "negative is invalid", value: -1, wantValid: false},
		{name: "256 is invalid", value: 256, wantValid: false},
		{name: "large positive is invalid", value: 1000, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.value.Validate()
			if (err == nil) != tt.wantValid {
				t.Errorf("ExitCode(%d).Validate() error = %v, wantValid %v", tt.value, err, tt.wantValid)
			}
			if tt.wantValid {
				if err != nil {
					t.Errorf("ExitCode(%d).Validate() returned error for valid value: %v", tt.value, err)
				}
			} else {
				if err == nil {
					t.Error("ExitCode.Validate() returned nil for invalid value")
				}
				if !errors.Is(err, ErrInvalidExitCode) {
					t.Errorf("error does not wrap ErrInvalidExitCode: %v", err)
				}
			}
		})
	}
}

func TestExitCodeIsSuccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code ExitCode
		want bool
	}{
		{0, true},
		{1, false},
		{125, false},
		{255, false},
	}

	for _, tt := range tests {
		if got := tt.code.IsSuccess(); got != tt.want {
			t.Errorf("ExitCode(%d).IsSuccess() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestFromSignal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		signum int
		want   ExitCode
	}{
		{2, 130},
		{9, 137},
		{15, 143},
	}

	for _, tt := range tests {
		if got := FromSignal(tt.signum); got != tt.want {
			t.Errorf("FromSignal(%d) = %d, want %d", tt.signum, got, tt.want)
		}
	}
}

func TestExitCodeSignal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code       ExitCode
		wantSignal int
		wantOK     bool
	}{
		{0, 0, false},
		{1, 0, false},
		{ExitNotExecutable, 0, false},
		{ExitCommandNotFound, 0, false},
		{ExitUsage, 0, false},
		{130, 2, true},
		{143, 15, true},
		{255, 127, true},
		{256, 0, false},
	}

	for _, tt := range tests {
		sig, ok := tt.code.Signal()
		if sig != tt.wantSignal || ok != tt.wantOK {
			t.Errorf("ExitCode(%d).Signal() = (%d, %v), want (%d, %v)", tt.code, sig, ok, tt.wantSignal, tt.wantOK)
		}
	}
}

func TestExitCodeString(t *testing.T) {
	t.Parallel()

	if got := ExitCode(42).String(); got != "42" {
		t.Errorf("ExitCode(42).String() = %q, want %q", got, "42")
	}
}
