// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the color scheme for terminal output.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError collects the field errors of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Manifest is an alternate manifest path; empty means search upward.
		Manifest string `json:"manifest" mapstructure:"manifest"`
		// DisableExecLoad forces scripts into a separate process image.
		DisableExecLoad bool `json:"disable_exec_load" mapstructure:"disable_exec_load"`
		// KeepFileDescriptors passes every inherited descriptor to the command.
		KeepFileDescriptors bool `json:"keep_file_descriptors" mapstructure:"keep_file_descriptors"`
		// AutoInstall runs InstallCommand when resolved packages are missing on disk.
		AutoInstall bool `json:"auto_install" mapstructure:"auto_install"`
		// PathSystem keeps inherited package search path entries after the bundle's.
		PathSystem bool `json:"path_system" mapstructure:"path_system"`
		// InstallCommand is the installer command line used by auto-install.
		InstallCommand string `json:"install_command" mapstructure:"install_command"`
		// RuntimeDir holds the runtime shim; empty means the user cache directory.
		RuntimeDir string `json:"runtime_dir" mapstructure:"runtime_dir"`
		// BinDir is where `bundlerun binstub` writes binstubs.
		BinDir string `json:"bin_dir" mapstructure:"bin_dir"`
		// LoadInterpreters are the shebang interpreters run in-process.
		LoadInterpreters []string `json:"load_interpreters" mapstructure:"load_interpreters"`
		// SelfNames are the command names that re-enter the engine itself.
		SelfNames []string `json:"self_names" mapstructure:"self_names"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme sets the color scheme ("auto", "dark", "light").
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BinDir:           "bin",
		LoadInterpreters: []string{"sh"},
		SelfNames:        []string{"bundlerun"},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// Validate returns an error if the ColorScheme is not recognized.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate checks the constraints that survive environment overrides, which
// bypass the CUE schema.
func (c *Config) Validate() error {
	var errs []error
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.AutoInstall && strings.TrimSpace(c.InstallCommand) == "" {
		errs = append(errs, errors.New("auto_install requires install_command"))
	}
	for _, name := range c.LoadInterpreters {
		if name == "" || strings.ContainsAny(name, "/ \t") {
			errs = append(errs, fmt.Errorf("load_interpreters: invalid interpreter name %q", name))
		}
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
