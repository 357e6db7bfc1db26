package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meridian-tools/meridian/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive analysis console",
	Long: `Starts the Meridian console in interactive mode: the action catalog on
stdin/stdout, with the teaching-command transcript available through
the 'show' command.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFromFlags(cmd)
		opts.DataPath, _ = cmd.Flags().GetString("data")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := cli.RunSession(ctx, opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("data", "", "Variables file (YAML) loaded into the pool at startup")

	// Make 'run' the default if no command is provided
	rootCmd.Run = runCmd.Run
}
