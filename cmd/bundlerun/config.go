// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bundlerun/bundlerun/internal/config"
)

// newConfigCommand creates the `bundlerun config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect bundlerun configuration",
		Long: `Inspect bundlerun configuration.

Configuration is read from the first of:
  - the --config flag or BUNDLERUN_CONFIG
  - $XDG_CONFIG_HOME/bundlerun/config.cue (Linux)
  - ./config.cue

Every setting can be overridden with a BUNDLERUN_<SETTING> variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	path := app.configPath
	if path == "" {
		path = os.Getenv(ConfigEnvVar)
	}
	cfg, source, err := config.LoadWithPath(ctx, config.LoadOptions{ConfigFilePath: path})
	if err != nil {
		return err
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if source == "" {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), source)
	}
	fmt.Fprintln(w)

	runtimeDir, err := cfg.ResolveRuntimeDir()
	if err != nil {
		runtimeDir = SubtitleStyle.Render("(unavailable)")
	}

	manifest := cfg.Manifest
	if manifest == "" {
		manifest = SubtitleStyle.Render("(search for Bundlefile)")
	}
	installCommand := cfg.InstallCommand
	if installCommand == "" {
		installCommand = SubtitleStyle.Render("(not set)")
	}

	rows := []struct {
		key   string
		value string
	}{
		{"manifest", manifest},
		{"auto_install", fmt.Sprint(cfg.AutoInstall)},
		{"install_command", installCommand},
		{"disable_exec_load", fmt.Sprint(cfg.DisableExecLoad)},
		{"keep_file_descriptors", fmt.Sprint(cfg.KeepFileDescriptors)},
		{"path_system", fmt.Sprint(cfg.PathSystem)},
		{"runtime_dir", runtimeDir},
		{"bin_dir", cfg.BinDir},
		{"load_interpreters", strings.Join(cfg.LoadInterpreters, ", ")},
		{"self_names", strings.Join(cfg.SelfNames, ", ")},
		{"ui.verbose", fmt.Sprint(cfg.UI.Verbose)},
		{"ui.color_scheme", cfg.UI.ColorScheme.String()},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render(row.key), SuccessStyle.Render(row.value))
	}
	return nil
}

func showConfigPath(app *App) error {
	if app.configPath != "" {
		fmt.Fprintln(app.stdout, app.configPath)
		return nil
	}
	if env := os.Getenv(ConfigEnvVar); env != "" {
		fmt.Fprintln(app.stdout, env)
		return nil
	}
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Fprintln(app.stdout, filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}
