package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meridian-tools/meridian"
	"github.com/meridian-tools/meridian/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "meridian",
	Short: "Meridian is an interactive analysis console for climate time series",
	Long: `Meridian presents a fixed catalog of time-axis and statistics actions
over a pool of defined variables, recording every computation as a
replayable teaching command.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("session", "", "Session ID transcripts are recorded under")
	rootCmd.PersistentFlags().String("redis", "", "Redis URL for pool and transcript persistence")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory of the versioned transcript repository")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}

// optionsFromFlags collects the persistent persistence flags.
func optionsFromFlags(cmd *cobra.Command) cli.RunOptions {
	session, _ := cmd.Flags().GetString("session")
	redisURL, _ := cmd.Flags().GetString("redis")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	return cli.RunOptions{
		SessionID: session,
		RedisURL:  redisURL,
		DataDir:   dataDir,
		Debug:     debug,
	}
}

// loadInto defines the variables of a data file in the console's pool.
func loadInto(cmd *cobra.Command, con *meridian.Console, path string) error {
	vars, err := cli.LoadVariables(path)
	if err != nil {
		return err
	}
	for _, v := range vars {
		if err := con.Pool.Add(cmd.Context(), v); err != nil {
			return err
		}
	}
	return nil
}
