// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bundlerun/bundlerun/internal/app/execute"
	"github.com/bundlerun/bundlerun/internal/binstub"
	"github.com/bundlerun/bundlerun/internal/issue"
	"github.com/bundlerun/bundlerun/pkg/bundle"
)

type binstubOptions struct {
	manifest string
	path     string
	force    bool
}

// newBinstubCommand creates the `bundlerun binstub` command.
func newBinstubCommand(app *App) *cobra.Command {
	var opts binstubOptions

	binstubCmd := &cobra.Command{
		Use:   "binstub <package>...",
		Short: "Generate launchers for package executables",
		Long: `Generate one launcher script per executable of each named package.
A launcher runs its executable through ` + "`bundlerun exec`" + `, so it always
uses the bundle's version. Launchers are written to bin_dir, relative to
the manifest's directory, unless --path is given.

Existing files that are not launchers of the same package are skipped
unless --force is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBinstub(cmd.Context(), app, args, opts)
		},
	}
	binstubCmd.Flags().BoolVar(&opts.force, "force", false, "overwrite existing files")
	binstubCmd.Flags().StringVar(&opts.path, "path", "", "directory to write launchers to (default: bin_dir)")
	binstubCmd.Flags().StringVar(&opts.manifest, "manifest", "", "manifest of the bundle (default: search for "+bundle.ManifestName+")")

	return binstubCmd
}

func runBinstub(ctx context.Context, app *App, packages []string, opts binstubOptions) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	manifest, err := execute.ManifestPath(opts.manifest, cfg, wd, environ())
	if err != nil {
		return err
	}
	env, err := execute.LoadEnvironment(ctx, app.Resolver, manifest)
	if err != nil {
		return err
	}

	dir := opts.path
	if dir == "" {
		dir = filepath.Join(filepath.Dir(manifest), cfg.BinDir)
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(wd, dir)
	}

	for _, name := range packages {
		pkg, ok := env.Lookup(name)
		if !ok {
			return issue.NewErrorContext().
				WithOperation("generate binstubs").
				WithResource(name).
				WithSuggestion("Add the package to " + filepath.Base(manifest) + " and run `bundlerun install`").
				WithIssue(issue.NotInBundleId).
				Wrap(fmt.Errorf("package %s is not in the bundle", name)).
				BuildError()
		}

		result, err := binstub.Generate(app.Fs, dir, pkg, binstub.Options{Force: opts.force})
		if err != nil {
			return err
		}
		for _, path := range result.Written {
			fmt.Fprintln(app.stdout, SuccessStyle.Render("wrote")+" "+path)
		}
		for _, path := range result.Skipped {
			fmt.Fprintln(app.stderr, WarningStyle.Render("skipped")+" "+path+SubtitleStyle.Render(" (exists; use --force to overwrite)"))
		}
	}
	return nil
}
