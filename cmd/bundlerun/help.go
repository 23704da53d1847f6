// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	_ "embed"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
)

const helpWrapWidth = 80

//go:embed exec_help.md
var execHelp string

// renderMarkdown renders markdown for the terminal, or leaves it as plain
// text when it cannot be styled.
func renderMarkdown(w io.Writer, md string) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(helpWrapWidth),
	)
	if err != nil {
		_, err = io.WriteString(w, md)
		return err
	}
	out, err := renderer.Render(md)
	if err != nil {
		_, err = io.WriteString(w, md)
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}
