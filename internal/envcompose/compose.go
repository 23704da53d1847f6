// SPDX-License-Identifier: MPL-2.0

package envcompose

import (
	"maps"
	"slices"
	"strings"

	"github.com/bundlerun/bundlerun/pkg/bundle"

	"github.com/anmitsu/go-shlex"
)

// Variables rewritten by Compose.
const (
	LibVar      = "BUNDLERUN_LIB"
	OptVar      = "BUNDLERUN_OPT"
	PathVar     = "BUNDLERUN_PATH"
	LockfileVar = "BUNDLERUN_LOCKFILE"
	ManifestVar = bundle.ManifestEnvVar
	BinPathVar  = "BUNDLERUN_BIN_PATH"
	SystemPath  = "PATH"
)

const (
	// SetupFeature is the feature the runtime shim provides.
	SetupFeature = "bundlerun/setup"
	// RequirePrefix marks a feature token in BUNDLERUN_OPT.
	RequirePrefix = "-r"
	// SetupToken is the BUNDLERUN_OPT token requiring the shim.
	SetupToken = RequirePrefix + SetupFeature
)

type (
	// Environment is a fully composed child environment.
	Environment map[string]string

	// Options configure composition.
	Options struct {
		// ShimDir is the library directory holding the runtime shim.
		ShimDir string
		// PathSystem keeps inherited BUNDLERUN_PATH entries after the bundle's.
		PathSystem bool
		// SelfPath is the engine executable exported as BUNDLERUN_BIN_PATH.
		SelfPath string
	}
)

// Compose derives the child environment from base. base is not modified.
// It fails only when an inherited value is malformed; nothing is returned
// partially composed.
func Compose(base map[string]string, env *bundle.Environment, opts Options) (Environment, error) {
	out := make(Environment, len(base)+6)
	maps.Copy(out, base)

	lib, err := prependList(base, LibVar, []string{opts.ShimDir})
	if err != nil {
		return nil, err
	}
	out[LibVar] = lib

	opt, err := requireFeature(base[OptVar])
	if err != nil {
		return nil, err
	}
	out[OptVar] = opt

	gemPath, err := packagePath(base, env.InstallRoots(), opts.PathSystem)
	if err != nil {
		return nil, err
	}
	out[PathVar] = gemPath

	path, err := prependList(base, SystemPath, env.BinDirs())
	if err != nil {
		return nil, err
	}
	out[SystemPath] = path

	out[LockfileVar] = env.Lockfile
	if env.Manifest != "" {
		out[ManifestVar] = env.Manifest
	}
	if opts.SelfPath != "" {
		out[BinPathVar] = opts.SelfPath
	}

	return out, nil
}

// Nested reports whether base was composed for the same lockfile, meaning
// this invocation already runs inside the bundle.
func Nested(base map[string]string, lockfile string) bool {
	marker, ok := base[LockfileVar]
	return ok && lockfile != "" && marker == lockfile
}

// Slice returns the environment as sorted "KEY=VALUE" entries.
func (e Environment) Slice() []string {
	keys := slices.Sorted(maps.Keys(e))
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		result = append(result, k+"="+e[k])
	}
	return result
}

// FromSlice parses "KEY=VALUE" entries as returned by os.Environ. Entries
// without a separator are skipped; later duplicates win.
func FromSlice(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || name == "" {
			continue
		}
		env[name] = value
	}
	return env
}

// requireFeature prepends SetupToken to an options value unless one of its
// shell words already is SetupToken. The original quoting is kept.
func requireFeature(value string) (string, error) {
	tokens, err := shlex.Split(value, true)
	if err != nil {
		return "", &CompositionError{Var: OptVar, Value: value, Err: err}
	}
	if slices.Contains(tokens, SetupToken) {
		return value, nil
	}
	if strings.TrimSpace(value) == "" {
		return SetupToken, nil
	}
	return SetupToken + " " + value, nil
}

// RequiredFeatures returns the features named by -r tokens in an options
// value, in order.
func RequiredFeatures(value string) ([]string, error) {
	tokens, err := shlex.Split(value, true)
	if err != nil {
		return nil, &CompositionError{Var: OptVar, Value: value, Err: err}
	}
	var features []string
	for i := 0; i < len(tokens); i++ {
		switch {
		case tokens[i] == RequirePrefix && i+1 < len(tokens):
			features = append(features, tokens[i+1])
			i++
		case strings.HasPrefix(tokens[i], RequirePrefix) && len(tokens[i]) > len(RequirePrefix):
			features = append(features, tokens[i][len(RequirePrefix):])
		}
	}
	return features, nil
}

// packagePath returns the bundle's install roots, followed by the inherited
// entries when system fallback is enabled.
func packagePath(base map[string]string, roots []string, system bool) (string, error) {
	entries := make([]string, 0, len(roots))
	entries = appendUnique(entries, roots...)

	inherited, err := splitList(PathVar, base[PathVar])
	if err != nil {
		return "", err
	}
	if system {
		entries = appendUnique(entries, inherited...)
	}

	return joinList(entries), nil
}
