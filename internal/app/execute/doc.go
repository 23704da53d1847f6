// SPDX-License-Identifier: MPL-2.0

// Package execute wires the `bundlerun exec` pipeline: argument
// partitioning, manifest discovery, optional auto-install, environment
// composition, executable resolution, launch mode selection and launch.
// It decouples the CLI layer from the engine packages.
package execute
