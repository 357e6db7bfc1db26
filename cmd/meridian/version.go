package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meridian-tools/meridian"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of meridian",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("meridian version %s\n", strings.TrimSpace(meridian.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
