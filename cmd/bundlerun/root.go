// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/bundlerun/bundlerun/internal/issue"
	"github.com/bundlerun/bundlerun/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type (
	hinter interface {
		Hints() []string
	}

	issuer interface {
		IssueID() issue.Id
	}
)

// NewRootCommand builds the static command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bundlerun",
		Short: "Run commands in the context of a resolved bundle",
		Long: TitleStyle.Render("bundlerun") + SubtitleStyle.Render(" - run commands in the context of a resolved bundle") + `

bundlerun activates the packages recorded in a Bundlefile's lockfile and
runs a command with their executables and libraries first on the search
paths. Nested bundlerun invocations see the same bundle.

` + SubtitleStyle.Render("Examples:") + `
  bundlerun exec rake db:migrate     Run a package executable
  bundlerun exec -- ./script/server  Run a project script in the bundle
  bundlerun install                  Install missing packages
  bundlerun binstub rack             Generate bin/rackup
  bundlerun config show              Show current configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&app.verbose, "verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/bundlerun/config.cue)")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if app.verbose {
			app.EnableVerbose()
		}
	}

	rootCmd.AddCommand(newExecCommand(app))
	rootCmd.AddCommand(newInstallCommand(app))
	rootCmd.AddCommand(newBinstubCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Main runs the CLI and returns the process exit status.
func Main() int {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "bundlerun: "+err.Error())
		return int(types.ExitFailure)
	}
	return run(context.Background(), app, NewRootCommand(app))
}

// Execute runs the CLI and exits. This is called by main.main().
func Execute() {
	os.Exit(Main())
}

func run(ctx context.Context, app *App, rootCmd *cobra.Command) int {
	// No fang.WithNotifySignal: the runner owns the interrupt disposition.
	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			printError(w, err, app.verbose)
		}),
	)
	if err == nil {
		return int(types.ExitSuccess)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return int(exitErr.Code)
	}
	return int(types.ExitFailure)
}

// printError writes "bundlerun: <message>" and the error's hints. Errors
// that were already reported by the command itself print nothing.
func printError(w io.Writer, err error, verbose bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("bundlerun:")+" "+formatErrorForDisplay(err, verbose))

	if !verbose {
		return
	}
	if id := issueOf(err); id != 0 {
		if guide := issue.Get(id); guide != nil {
			if rendered, renderErr := guide.Render("dark"); renderErr == nil {
				fmt.Fprint(w, rendered)
			}
		}
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}

	var msg strings.Builder
	msg.WriteString(err.Error())
	var h hinter
	if errors.As(err, &h) {
		for _, hint := range h.Hints() {
			msg.WriteString("\n  • ")
			msg.WriteString(hint)
		}
	}
	return msg.String()
}

func issueOf(err error) issue.Id {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return ae.Issue
	}
	var i issuer
	if errors.As(err, &i) {
		return i.IssueID()
	}
	return 0
}
