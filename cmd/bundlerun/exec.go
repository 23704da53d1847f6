// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bundlerun/bundlerun/internal/app/execute"
	"github.com/bundlerun/bundlerun/internal/runtime"
)

// newExecCommand creates the `bundlerun exec` command. Cobra flag parsing
// is disabled: engine flags are only valid before the command name, and
// everything else belongs to the command.
func newExecCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:                "exec [flags] <command> [args...]",
		Short:              "Run a command in the context of the bundle",
		Long:               "Run a command in the context of the bundle.\n\nRun `bundlerun exec --help` for the full help page.",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd.Context(), app, args)
		},
	}
}

func runExec(ctx context.Context, app *App, args []string) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	runner := runtime.NewRunner(true)
	runner.IO = runtime.IO{Stdin: app.stdin, Stdout: app.stdout, Stderr: app.stderr}
	runner.Logger = app.Logger()

	engine := &execute.Engine{
		Config:    cfg,
		Resolver:  app.Resolver,
		Installer: app.installer(cfg),
		Runner:    runner,
		Fs:        app.Fs,
		SelfPath:  app.SelfPath,
		Stdout:    app.stdout,
		Stderr:    app.stderr,
		Help: func() error {
			return renderMarkdown(app.stdout, execHelp)
		},
		EnableVerbose: app.EnableVerbose,
		Logger:        app.Logger(),
	}

	outcome, err := engine.Run(ctx, execute.Request{
		Args:    args,
		WorkDir: wd,
		Env:     environ(),
	})
	if err != nil || !outcome.Success() {
		return &ExitError{Code: outcome.ExitCode, Err: err}
	}
	return nil
}
