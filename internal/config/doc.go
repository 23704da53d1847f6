// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from $XDG_CONFIG_HOME/bundlerun/config.cue (the
// platform equivalent on macOS and Windows) or ./config.cue, validated against
// the embedded #Config schema (config_schema.cue), and overridden by
// BUNDLERUN_* environment variables (BUNDLERUN_AUTO_INSTALL, BUNDLERUN_UI_VERBOSE, ...).
package config
