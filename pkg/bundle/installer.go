// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/anmitsu/go-shlex"
)

// ManifestEnvVar names the variable carrying the manifest path to the
// installer and to nested exec invocations.
const ManifestEnvVar = "BUNDLERUN_MANIFEST"

// ErrNoInstallCommand is returned when installation is requested but no
// install command is configured.
var ErrNoInstallCommand = errors.New("no install command configured")

// CommandInstaller installs missing packages by running an external command
// line (for example "pkgtool install --deployment"). The manifest path is
// exported to it through BUNDLERUN_MANIFEST and the manifest directory is
// its working directory.
type CommandInstaller struct {
	// CommandLine is split with POSIX shell-word rules.
	CommandLine string
	// Env is the environment of the install command; nil means os.Environ().
	Env []string
}

// NewCommandInstaller creates an installer for the given command line.
func NewCommandInstaller(commandLine string) *CommandInstaller {
	return &CommandInstaller{CommandLine: commandLine}
}

// Install runs the install command and streams its output.
func (i *CommandInstaller) Install(ctx context.Context, manifest string, stdout, stderr io.Writer) error {
	if i.CommandLine == "" {
		return ErrNoInstallCommand
	}

	argv, err := shlex.Split(i.CommandLine, true)
	if err != nil {
		return fmt.Errorf("failed to parse install command %q: %w", i.CommandLine, err)
	}
	if len(argv) == 0 {
		return ErrNoInstallCommand
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = filepath.Dir(manifest)
	env := i.Env
	if env == nil {
		env = os.Environ()
	}
	cmd.Env = append(append([]string(nil), env...), ManifestEnvVar+"="+manifest)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("install command %q exited with status %d", i.CommandLine, exitErr.ExitCode())
		}
		return fmt.Errorf("failed to run install command %q: %w", i.CommandLine, err)
	}
	return nil
}
