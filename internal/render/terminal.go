package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// TerminalOptions controls terminal rendering.
type TerminalOptions struct {
	// Style is a glamour standard style name. Empty picks one from the
	// terminal background.
	Style    string
	WordWrap int
}

// Terminal renders markdown for display in a terminal.
func Terminal(markdown string, opts TerminalOptions) (string, error) {
	wrap := opts.WordWrap
	if wrap <= 0 {
		wrap = 120
	}
	styleOpt := glamour.WithAutoStyle()
	if opts.Style != "" {
		styleOpt = glamour.WithStandardStyle(opts.Style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrap))
	if err != nil {
		return "", fmt.Errorf("create terminal renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
