// Package tui holds the console's terminal presentation: the banner
// and the glamour Markdown renderer used for transcripts.
package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders Markdown using glamour,
// auto-detecting light/dark backgrounds. When the renderer cannot be
// built (no TTY), the raw Markdown passes through unchanged.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
