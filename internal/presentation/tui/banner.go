package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Meridian ASCII banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Ocean-to-teal gradient.
	lines := []struct {
		text  string
		color string
	}{
		{" __  __           _     _ _             ", "#38bdf8"},
		{"|  \\/  | ___ _ __(_) __| (_) __ _ _ __  ", "#22d3ee"},
		{"| |\\/| |/ _ \\ '__| |/ _` | |/ _` | '_ \\ ", "#2dd4bf"},
		{"| |  | |  __/ |  | | (_| | | (_| | | | |", "#34d399"},
		{"|_|  |_|\\___|_|  |_|\\__,_|_|\\__,_|_| |_|", "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
