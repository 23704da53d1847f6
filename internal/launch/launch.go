// SPDX-License-Identifier: MPL-2.0

// Package launch decides whether a resolved command replaces the process
// image or is loaded into the engine's embedded shell interpreter.
package launch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/spf13/afero"
	"mvdan.cc/sh/v3/syntax"

	"github.com/bundlerun/bundlerun/internal/resolve"
)

// maxShebangLength bounds how much of the first line is read.
const maxShebangLength = 256

// ErrNoShebang is returned by ReadShebang for files without a "#!" line.
var ErrNoShebang = errors.New("no shebang line")

type (
	// Options are the settings that influence mode selection.
	Options struct {
		// Fs is the filesystem the target is read from. Nil means the OS filesystem.
		Fs afero.Fs
		// DisableExecLoad forces replace mode.
		DisableExecLoad bool
		// KeepFileDescriptors forces replace mode so descriptors survive.
		KeepFileDescriptors bool
		// LoadInterpreters are the interpreter names run in-process.
		LoadInterpreters []string
	}

	// Shebang is a parsed "#!" line.
	Shebang struct {
		// Interpreter is the program named by the line, after unwrapping env.
		Interpreter string
		// Args are the interpreter arguments.
		Args []string
	}
)

// Name returns the interpreter's base name.
func (s Shebang) Name() string { return filepath.Base(s.Interpreter) }

// Select returns the launch mode for cmd.
func Select(cmd *resolve.Command, opts Options) resolve.Mode {
	if cmd.Self || cmd.Shell || cmd.Path == "" {
		return resolve.Replace
	}
	if opts.DisableExecLoad || opts.KeepFileDescriptors {
		return resolve.Replace
	}

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f, err := fs.Open(cmd.Path)
	if err != nil {
		return resolve.Replace
	}
	defer f.Close()

	if info, statErr := f.Stat(); statErr == nil && info.Size() == 0 {
		return resolve.Load
	}

	sb, err := ReadShebang(f)
	if err != nil {
		return resolve.Replace
	}
	if !slices.Contains(opts.LoadInterpreters, sb.Name()) {
		return resolve.Replace
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return resolve.Replace
	}
	if TrapsSignals(f, cmd.Path) {
		return resolve.Replace
	}
	return resolve.Load
}

// TrapsSignals reports whether the script in r sets a trap on a real
// signal. The embedded interpreter only knows the EXIT and ERR pseudo
// signals, so such scripts need their own shell. Unparsable scripts report
// false; loading them reports the syntax error.
func TrapsSignals(r io.Reader, name string) bool {
	prog, err := syntax.NewParser().Parse(r, name)
	if err != nil {
		return false
	}
	found := false
	syntax.Walk(prog, func(node syntax.Node) bool {
		if found {
			return false
		}
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) < 2 || call.Args[0].Lit() != "trap" {
			return true
		}
		specs := call.Args[1:]
		if len(specs) > 1 {
			specs = specs[1:]
		}
		for _, w := range specs {
			if !pseudoSignal(w.Lit()) {
				found = true
				break
			}
		}
		return true
	})
	return found
}

// pseudoSignal reports whether spec names a trap that is not a signal.
// Words that are not plain literals count as signals.
func pseudoSignal(spec string) bool {
	switch strings.ToUpper(strings.TrimPrefix(spec, "SIG")) {
	case "EXIT", "ERR", "0":
		return true
	}
	return false
}

// ReadShebang parses the first line of r. "env" is unwrapped along with
// its -S flag and leading NAME=value assignments.
func ReadShebang(r io.Reader) (Shebang, error) {
	line, err := bufio.NewReaderSize(r, maxShebangLength).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return Shebang{}, fmt.Errorf("failed to read shebang: %w", err)
	}
	if len(line) > maxShebangLength {
		line = line[:maxShebangLength]
	}
	rest, ok := strings.CutPrefix(line, "#!")
	if !ok {
		return Shebang{}, ErrNoShebang
	}

	words, err := shlex.Split(strings.TrimSpace(rest), true)
	if err != nil {
		return Shebang{}, fmt.Errorf("malformed shebang: %w", err)
	}
	if len(words) == 0 {
		return Shebang{}, ErrNoShebang
	}

	if filepath.Base(words[0]) == "env" {
		words = unwrapEnv(words[1:])
		if len(words) == 0 {
			return Shebang{}, ErrNoShebang
		}
	}
	return Shebang{Interpreter: words[0], Args: words[1:]}, nil
}

func unwrapEnv(words []string) []string {
	for len(words) > 0 {
		w := words[0]
		switch {
		case w == "-S" || w == "--split-string":
			words = words[1:]
		case strings.HasPrefix(w, "-S"):
			words = append(strings.Fields(w[2:]), words[1:]...)
		case w == "-i" || w == "-" || w == "--ignore-environment":
			words = words[1:]
		case strings.Contains(w, "=") && !strings.HasPrefix(w, "="):
			words = words[1:]
		default:
			return words
		}
	}
	return words
}
