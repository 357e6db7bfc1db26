package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/meridian-tools/meridian/internal/cli"
	"github.com/meridian-tools/meridian/internal/presentation/tui"
	"github.com/meridian-tools/meridian/pkg/transcript"
)

// transcriptCmd prints a stored session transcript without opening
// the console.
var transcriptCmd = &cobra.Command{
	Use:   "transcript [session]",
	Short: "Print the teaching commands of a session",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFromFlags(cmd)
		if len(args) > 0 {
			opts.SessionID = args[0]
		}

		con, err := cli.NewConsole(opts)
		if err != nil {
			fmt.Printf("Error initializing meridian: %v\n", err)
			os.Exit(1)
		}

		entries, err := con.Recorder.Entries(cmd.Context())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if len(entries) == 0 {
			fmt.Printf("No teaching commands recorded for session %q.\n", con.SessionID())
			return
		}

		markdown := transcript.Render(con.SessionID(), entries)
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if rendered, err := tui.NewRenderer()(markdown); err == nil {
				fmt.Print(rendered)
				return
			}
		}
		fmt.Print(markdown)
	},
}

func init() {
	rootCmd.AddCommand(transcriptCmd)
}
