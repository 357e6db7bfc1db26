package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meridian-tools/meridian/internal/presentation/graph"
	"github.com/meridian-tools/meridian/pkg/catalog"
)

// catalogCmd prints the action catalog without opening the console.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the action catalog",
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")

		cat, err := catalog.New()
		if err != nil {
			fmt.Printf("Error building catalog: %v\n", err)
			os.Exit(1)
		}

		switch format {
		case "mermaid":
			fmt.Print(graph.GenerateMermaid(cat.Menus(), nil))
		case "json":
			data, err := json.MarshalIndent(cat.Menus(), "", "  ")
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(data))
		default:
			fmt.Printf("Unknown format: %s. Supported: json, mermaid\n", format)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().String("format", "json", "Output format: 'json' or 'mermaid'")
}
