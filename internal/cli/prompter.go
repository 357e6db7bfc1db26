package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TerminalPrompter collects numeric values on the console, e.g. the
// X-Daily sample frequency. Outside a terminal it declines every
// prompt so dispatch aborts instead of blocking on a pipe.
type TerminalPrompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewTerminalPrompter wraps the console's reader and writer. The
// reader is shared with the session loop, so pending input stays in
// one buffer.
func NewTerminalPrompter(in *bufio.Reader, out io.Writer, interactive bool) *TerminalPrompter {
	return &TerminalPrompter{in: in, out: out, interactive: interactive}
}

// PromptFloat asks for one numeric value. Empty or unparsable input
// counts as a cancellation, not an error.
func (p *TerminalPrompter) PromptFloat(ctx context.Context, title, label string) (float64, bool, error) {
	if !p.interactive {
		return 0, false, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	fmt.Fprintf(p.out, "%s\n%s (empty cancels): ", title, label)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, false, nil
		}
		return 0, false, err
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return 0, false, nil
	}
	value, err := strconv.ParseFloat(line, 64)
	if err != nil {
		printSystemMessage(p.out, "Not a number: %q", line)
		return 0, false, nil
	}
	return value, true, nil
}
