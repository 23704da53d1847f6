// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/bundlerun/bundlerun/internal/config"
	"github.com/bundlerun/bundlerun/internal/envcompose"
	"github.com/bundlerun/bundlerun/pkg/bundle"
)

// ConfigEnvVar names a config file for invocations that cannot pass --config,
// such as binstubs re-entering `bundlerun exec`.
const ConfigEnvVar = "BUNDLERUN_CONFIG"

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer; every Cobra handler receives an App reference.
	App struct {
		Config    ConfigProvider
		Resolver  bundle.Resolver
		Installer bundle.Installer
		Fs        afero.Fs
		SelfPath  string

		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
		logger *log.Logger

		// set by persistent flags
		configPath string
		verbose    bool
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   ConfigProvider
		Resolver bundle.Resolver
		// Installer overrides the install_command based installer.
		Installer bundle.Installer
		Fs        afero.Fs
		// SelfPath is the bundlerun executable; empty means os.Executable.
		SelfPath string
		Stdin    io.Reader
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Resolver == nil {
		deps.Resolver = bundle.NewLockfileResolver()
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.SelfPath == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate bundlerun executable: %w", err)
		}
		deps.SelfPath = self
	}

	logger := log.NewWithOptions(deps.Stderr, log.Options{
		Prefix: config.AppName,
		Level:  log.WarnLevel,
	})

	return &App{
		Config:    deps.Config,
		Resolver:  deps.Resolver,
		Installer: deps.Installer,
		Fs:        deps.Fs,
		SelfPath:  deps.SelfPath,
		stdin:     deps.Stdin,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
		logger:    logger,
	}, nil
}

// Logger returns the slog view of the CLI logger. Library packages log
// through it.
func (a *App) Logger() *slog.Logger {
	return slog.New(a.logger)
}

// EnableVerbose switches diagnostics to debug level.
func (a *App) EnableVerbose() {
	a.verbose = true
	a.logger.SetLevel(log.DebugLevel)
}

// loadConfig loads the configuration named by --config or BUNDLERUN_CONFIG,
// falling back to the standard search.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	path := a.configPath
	if path == "" {
		path = os.Getenv(ConfigEnvVar)
	}
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: path})
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose && !a.verbose {
		a.EnableVerbose()
	}
	return cfg, nil
}

// installer returns the injected installer or one running the configured
// install_command.
func (a *App) installer(cfg *config.Config) bundle.Installer {
	if a.Installer != nil {
		return a.Installer
	}
	if cfg.InstallCommand == "" {
		return nil
	}
	return bundle.NewCommandInstaller(cfg.InstallCommand)
}

// environ is the inherited environment as a map.
func environ() map[string]string {
	return envcompose.FromSlice(os.Environ())
}
