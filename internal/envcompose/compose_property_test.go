// SPDX-License-Identifier: MPL-2.0

package envcompose

import (
	"maps"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// pathEntries generates path lists that sometimes already contain the shim
// directory or a package bin directory.
func pathEntries() gopter.Gen {
	return gen.SliceOf(gen.OneGenOf(
		gen.Identifier().Map(func(s string) string { return "/" + s }),
		gen.Const("/cache/bundlerun/lib"),
		gen.Const("/gems/rack-1.0.0/bin"),
		gen.Const(""),
	)).Map(func(entries []string) string { return strings.Join(entries, sep) })
}

// optionWords generates well-formed option strings.
func optionWords() gopter.Gen {
	return gen.SliceOf(gen.OneGenOf(
		gen.Const("-w"),
		gen.Const(SetupToken),
		gen.Const(`-I "with space"`),
		gen.Identifier().Map(func(s string) string { return "-r" + s }),
	)).Map(func(words []string) string { return strings.Join(words, " ") })
}

// Composing inside an already composed environment (a nested invocation)
// must not change it.
func TestCompose_Idempotent_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("compose twice equals compose once", prop.ForAll(
		func(lib, path, gemPath, opt string, system bool) bool {
			base := map[string]string{LibVar: lib, "PATH": path, PathVar: gemPath, OptVar: opt}
			opts := testOptions()
			opts.PathSystem = system

			once, err := Compose(base, testBundle(), opts)
			if err != nil {
				t.Logf("first composition failed: %v", err)
				return false
			}
			twice, err := Compose(once, testBundle(), opts)
			if err != nil {
				t.Logf("second composition failed: %v", err)
				return false
			}
			return maps.Equal(once, twice)
		},
		pathEntries(), pathEntries(), pathEntries(), optionWords(), gen.Bool(),
	))

	properties.Property("shim entry appears exactly once", prop.ForAll(
		func(lib string, depth int) bool {
			env := map[string]string{LibVar: lib}
			for range depth {
				composed, err := Compose(env, testBundle(), testOptions())
				if err != nil {
					return false
				}
				env = composed
			}
			if strings.Contains(lib, "/cache/bundlerun/lib") {
				return countEntries(env[LibVar], "/cache/bundlerun/lib") == countEntries(lib, "/cache/bundlerun/lib")
			}
			return countEntries(env[LibVar], "/cache/bundlerun/lib") == 1
		},
		pathEntries(), gen.IntRange(1, 4),
	))

	properties.Property("setup token appears once", prop.ForAll(
		func(opt string) bool {
			once, err := Compose(map[string]string{OptVar: opt}, testBundle(), testOptions())
			if err != nil {
				return false
			}
			before, err := RequiredFeatures(opt)
			if err != nil {
				return false
			}
			after, err := RequiredFeatures(once[OptVar])
			if err != nil {
				return false
			}
			want := countFeature(before, SetupFeature)
			if want == 0 {
				want = 1
			}
			return countFeature(after, SetupFeature) == want
		},
		optionWords(),
	))

	properties.TestingRun(t)
}

func countFeature(features []string, feature string) int {
	n := 0
	for _, f := range features {
		if f == feature {
			n++
		}
	}
	return n
}
