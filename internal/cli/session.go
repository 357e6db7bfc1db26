package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/meridian-tools/meridian"
	"github.com/meridian-tools/meridian/internal/presentation/tui"
	"github.com/meridian-tools/meridian/pkg/catalog"
	"github.com/meridian-tools/meridian/pkg/dispatch"
	"github.com/meridian-tools/meridian/pkg/domain"
	"github.com/meridian-tools/meridian/pkg/transcript"
)

// RunSession executes a single interactive session on stdin/stdout.
func RunSession(ctx context.Context, opts RunOptions) error {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	reader := bufio.NewReader(os.Stdin)
	prompter := NewTerminalPrompter(reader, os.Stdout, interactive)

	con, err := NewConsole(opts, meridian.WithPrompter(prompter))
	if err != nil {
		return err
	}

	if err := seedPool(ctx, con, opts); err != nil {
		return err
	}

	if interactive {
		tui.PrintBanner(os.Stdout)
		printSystemMessage(os.Stdout, "Session '%s' active. Type 'help' for commands.", con.SessionID())
	}

	s := &session{
		con:    con,
		in:     reader,
		out:    os.Stdout,
		render: renderFunc(interactive),
	}
	return s.loop(ctx)
}

func renderFunc(interactive bool) func(string) (string, error) {
	if interactive {
		return tui.NewRenderer()
	}
	return func(markdown string) (string, error) { return markdown, nil }
}

func seedPool(ctx context.Context, con *meridian.Console, opts RunOptions) error {
	var vars []domain.Variable
	if opts.DataPath != "" {
		loaded, err := LoadVariables(opts.DataPath)
		if err != nil {
			return err
		}
		vars = loaded
	} else {
		existing, err := con.Pool.List(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil // a persistent pool already holds data
		}
		vars = DemoVariables()
	}

	for _, v := range vars {
		if err := con.Pool.Add(ctx, v); err != nil {
			return fmt.Errorf("failed to define %s: %w", v.ID, err)
		}
	}
	return nil
}

// session is one interactive console run: a console, a line reader,
// and a Markdown renderer for the transcript view.
type session struct {
	con    *meridian.Console
	in     *bufio.Reader
	out    io.Writer
	render func(string) (string, error)
}

func (s *session) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprint(s.out, "> ")
		line, err := s.in.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "exit", "quit":
			fmt.Fprintln(s.out, "Bye!")
			return nil
		case "help":
			s.printHelp()
		case "menu":
			s.printMenus(s.con.Catalog.Menus(), "")
		case "vars":
			s.printVariables(ctx)
		case "show":
			s.showTranscript(ctx)
		case "record":
			s.toggleRecording(fields[1:])
		case "load":
			s.loadFile(ctx, fields[1:])
		case "run":
			s.dispatch(ctx, fields[1:])
		default:
			printSystemMessage(s.out, "Unknown command %q. Type 'help'.", fields[0])
		}
	}
}

func (s *session) printHelp() {
	fmt.Fprint(s.out, `Commands:
  menu                 Show the action catalog
  vars                 List the defined variables
  run <op> <id...>     Dispatch an action over variables
  show                 View the teaching commands
  record on|off        Toggle command recording
  load <path>          Define variables from a YAML file
  exit                 Leave the console
`)
}

func (s *session) printMenus(menus []catalog.Menu, indent string) {
	for _, m := range menus {
		fmt.Fprintf(s.out, "%s%s\n", indent, m.Title)
		for _, a := range m.Actions {
			fmt.Fprintf(s.out, "%s  %-28s %s\n", indent, a.Op, a.Label)
		}
		s.printMenus(m.Submenus, indent+"  ")
	}
}

func (s *session) printVariables(ctx context.Context) {
	ids, err := s.con.Pool.List(ctx)
	if err != nil {
		printSystemMessage(s.out, "Error: %v", err)
		return
	}
	if len(ids) == 0 {
		printSystemMessage(s.out, "No variables defined.")
		return
	}
	for _, id := range sortedIDs(ids) {
		v, err := s.con.Pool.Get(ctx, id)
		if err != nil {
			printSystemMessage(s.out, "Error: %v", err)
			return
		}
		bounds := ""
		if v.Axis.HasBounds() {
			bounds = ", bounds set"
		}
		fmt.Fprintf(s.out, "  %-24s %d samples%s\n", id, len(v.Values), bounds)
	}
}

func (s *session) showTranscript(ctx context.Context) {
	entries, err := s.con.Recorder.Entries(ctx)
	if err != nil {
		printSystemMessage(s.out, "Error: %v", err)
		return
	}
	markdown := transcript.Render(s.con.SessionID(), entries)
	rendered, err := s.render(markdown)
	if err != nil {
		rendered = markdown
	}
	fmt.Fprint(s.out, rendered)
	if !strings.HasSuffix(rendered, "\n") {
		fmt.Fprintln(s.out)
	}
}

func (s *session) toggleRecording(args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		printSystemMessage(s.out, "Usage: record on|off")
		return
	}
	s.con.Recorder.SetEnabled(args[0] == "on")
	printSystemMessage(s.out, "Recording %s.", args[0])
}

func (s *session) loadFile(ctx context.Context, args []string) {
	if len(args) != 1 {
		printSystemMessage(s.out, "Usage: load <path>")
		return
	}
	vars, err := LoadVariables(args[0])
	if err != nil {
		printSystemMessage(s.out, "Error: %v", err)
		return
	}
	for _, v := range vars {
		if err := s.con.Pool.Add(ctx, v); err != nil {
			printSystemMessage(s.out, "Error: %v", err)
			return
		}
	}
	printSystemMessage(s.out, "Defined %d variables.", len(vars))
}

func (s *session) dispatch(ctx context.Context, args []string) {
	if len(args) < 1 {
		printSystemMessage(s.out, "Usage: run <op> <id...>")
		return
	}
	op := domain.OpID(args[0])
	sel := domain.Selection(args[1:])

	res, err := s.con.Dispatcher.Dispatch(ctx, op, sel)
	if err != nil {
		printSystemMessage(s.out, "Error: %v", err)
		return
	}
	if res.Aborted {
		printSystemMessage(s.out, "Aborted.")
		return
	}
	if len(res.Derived) > 0 {
		printSystemMessage(s.out, "Defined: %s", strings.Join(res.Derived, ", "))
	}
	if res.Stat != nil {
		s.runStatistic(ctx, res.Stat)
		return
	}
	if res.Stat == nil && len(res.Derived) == 0 {
		printSystemMessage(s.out, "Done.")
	}
}

func (s *session) runStatistic(ctx context.Context, run *dispatch.StatRun) {
	s.readChoices(run)

	out, err := run.Execute(ctx)
	if err != nil {
		printSystemMessage(s.out, "Error: %v", err)
		return
	}

	if out.Regression != nil {
		fmt.Fprintf(s.out, "%s: slope=%g intercept=%g\n", out.Label, out.Regression.Slope, out.Regression.Intercept)
		return
	}
	if len(out.Values) == 1 {
		fmt.Fprintf(s.out, "%s = %g\n", out.Label, out.Scalar())
		return
	}
	fmt.Fprintf(s.out, "%s = %v\n", out.Label, out.Values)
}

// readChoices walks the action's declared choices and records any the
// user fills in. Empty input keeps a choice at its default.
func (s *session) readChoices(run *dispatch.StatRun) {
	for _, choice := range run.Desc.Choices {
		if len(choice.Values) > 0 {
			fmt.Fprintf(s.out, "%s [%s] (enter skips): ", choice.Name, strings.Join(choice.Values, "/"))
		} else {
			fmt.Fprintf(s.out, "%s (enter skips): ", choice.Name)
		}
		line, err := s.in.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		run.SetChoice(choice.Name, parseChoiceValue(line))
	}
}

// parseChoiceValue keeps typed values typed: bools and numbers decode
// before validation, everything else stays a string.
func parseChoiceValue(raw string) any {
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		values := make([]float64, 0, len(parts))
		for _, part := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return raw
			}
			values = append(values, f)
		}
		return values
	}
	return raw
}

// sortedIDs is a display helper for deterministic listings.
func sortedIDs(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
