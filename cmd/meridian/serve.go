package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpAdapter "github.com/meridian-tools/meridian/internal/adapters/http"
	"github.com/meridian-tools/meridian/internal/cli"
	"github.com/meridian-tools/meridian/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the Meridian console in server mode, exposing dispatch, catalog, pool and transcript over a JSON API.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")
		dataPath, _ := cmd.Flags().GetString("data")

		con, err := cli.NewConsole(optionsFromFlags(cmd))
		if err != nil {
			fmt.Printf("Error initializing meridian: %v\n", err)
			os.Exit(1)
		}

		if dataPath != "" {
			if err := loadInto(cmd, con, dataPath); err != nil {
				fmt.Printf("Error loading variables: %v\n", err)
				os.Exit(1)
			}
		}

		logger := logging.NewJSON(slog.LevelInfo)
		handler := httpAdapter.NewHandler(con.Dispatcher, con.Catalog, con.Pool, con.Recorder,
			httpAdapter.WithLogger(logger))

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Meridian Server on %s\n", srv.Addr)
			fmt.Printf("Recording session: %s\n", con.SessionID())
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Meridian Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("data", "", "Variables file (YAML) loaded into the pool at startup")
}
