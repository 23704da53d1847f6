// SPDX-License-Identifier: MPL-2.0

package execargs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bundlerun/bundlerun/pkg/types"
)

// Separator forces every following token to be the command and its arguments.
const Separator = "--"

// ErrUsage is the sentinel error wrapped by UsageError.
var ErrUsage = errors.New("usage error")

type (
	// Flags are the engine flags recognised before the command name.
	Flags struct {
		// Manifest is the alternate manifest path (--manifest, alias --gemfile).
		Manifest string
		// Verbose enables debug diagnostics.
		Verbose bool
		// KeepFileDescriptors passes inherited descriptors through to the command.
		KeepFileDescriptors bool
		// Help requests the engine's own help page.
		Help bool
	}

	// Invocation is the result of partitioning an exec argument vector.
	Invocation struct {
		Flags   Flags
		Command string
		Args    []string
	}

	// UsageError reports a malformed exec invocation.
	UsageError struct {
		Message string
	}
)

// Error implements the error interface.
func (e *UsageError) Error() string { return e.Message }

// Unwrap returns ErrUsage for errors.Is() compatibility.
func (e *UsageError) Unwrap() error { return ErrUsage }

// ExitCode returns the exit status of a usage failure.
func (e *UsageError) ExitCode() types.ExitCode { return types.ExitUsage }

// Hints returns remediation suggestions.
func (e *UsageError) Hints() []string {
	return []string{"Run `bundlerun exec --help` for usage"}
}

// Partition splits args, the tokens following `exec`.
//
// The first token that is not an engine flag is the command name; it and
// everything after it are returned untouched. After "--" every token is
// command material, even flag-like ones. Without a command the result is a
// UsageError, unless help was requested.
func Partition(args []string) (Invocation, error) {
	var p Invocation

	i := 0
scan:
	for i < len(args) {
		arg := args[i]
		switch {
		case arg == Separator:
			i++
			break scan
		case arg == "--help" || arg == "-h":
			p.Flags.Help = true
		case arg == "--verbose":
			p.Flags.Verbose = true
		case arg == "--keep-file-descriptors":
			p.Flags.KeepFileDescriptors = true
		case arg == "--manifest" || arg == "--gemfile":
			if i+1 >= len(args) {
				return Invocation{}, &UsageError{Message: fmt.Sprintf("flag %s needs a path", arg)}
			}
			p.Flags.Manifest = args[i+1]
			i++
		case strings.HasPrefix(arg, "--manifest=") || strings.HasPrefix(arg, "--gemfile="):
			value := arg[strings.IndexByte(arg, '=')+1:]
			if value == "" {
				return Invocation{}, &UsageError{Message: fmt.Sprintf("flag %s needs a path", arg[:strings.IndexByte(arg, '=')])}
			}
			p.Flags.Manifest = value
		default:
			// First non-engine token, flag-like or not, is the command.
			break scan
		}
		i++
	}

	if i < len(args) {
		p.Command = args[i]
		p.Args = append([]string{}, args[i+1:]...)
	}

	if p.Command == "" && !p.Flags.Help {
		return Invocation{}, &UsageError{Message: "exec needs a command to run"}
	}
	return p, nil
}
