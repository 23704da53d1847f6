// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bundlerun/bundlerun/internal/app/execute"
	"github.com/bundlerun/bundlerun/internal/issue"
	"github.com/bundlerun/bundlerun/pkg/bundle"
)

// newInstallCommand creates the `bundlerun install` command.
func newInstallCommand(app *App) *cobra.Command {
	var manifest string

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install the packages of the bundle",
		Long: `Install the packages of the bundle by running the configured
install_command in the manifest's directory. The manifest path is exported
to the installer as BUNDLERUN_MANIFEST.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), app, manifest)
		},
	}
	installCmd.Flags().StringVar(&manifest, "manifest", "", "manifest to install (default: search for "+bundle.ManifestName+")")

	return installCmd
}

func runInstall(ctx context.Context, app *App, manifestFlag string) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	manifest, err := execute.ManifestPath(manifestFlag, cfg, wd, environ())
	if err != nil {
		return err
	}

	installer := app.installer(cfg)
	if installer == nil {
		return issue.NewErrorContext().
			WithOperation("install packages").
			WithResource(manifest).
			WithSuggestion("Set install_command in the configuration file").
			WithSuggestion("Or export BUNDLERUN_INSTALL_COMMAND").
			WithIssue(issue.InstallFailedId).
			Wrap(bundle.ErrNoInstallCommand).
			BuildError()
	}

	app.Logger().Debug("installing", "manifest", manifest)
	if err := installer.Install(ctx, manifest, app.stdout, app.stderr); err != nil {
		return issue.NewErrorContext().
			WithOperation("install packages").
			WithResource(manifest).
			WithSuggestion("Check the install_command setting").
			WithIssue(issue.InstallFailedId).
			Wrap(err).
			BuildError()
	}
	return nil
}
