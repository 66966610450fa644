// Slate: a ticket/todo tracker exposed as an MCP server.
//
// Slate lets an AI assistant create and query lightweight project
// tickets and their sub-tasks through MCP tools, backed by a local
// SQLite database selected with SLATE_DB.
//
// Usage:
//
//	slate serve      # Start the MCP server (stdio transport)
//	slate init       # Create the database and apply the schema
//	slate version    # Print the version
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/slatehq/slate/internal/config"
	"github.com/slatehq/slate/internal/logging"
	slateserver "github.com/slatehq/slate/internal/server"
	"github.com/slatehq/slate/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "slate",
		Short:         "Ticket/todo tracker MCP server",
		Long:          "Slate exposes a SQLite-backed ticket and todo tracker as MCP tools over stdio.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), initCmd(), versionCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Logs go to a rotating file (or stderr) — stdout carries
			// the MCP protocol.
			logCloser := logging.Setup(cfg.LogFile)
			defer func() { _ = logCloser.Close() }()

			s, cleanup, err := slateserver.New(cfg)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			defer cleanup()

			return mcpserver.ServeStdio(s)
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database file and apply the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			color.Green("Database ready: %s", cfg.DBPath)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stderr, "slate v%s\n", slateserver.Version)
		},
	}
}
