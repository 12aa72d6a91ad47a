// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for Claude integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/kcal/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to log meals and read your calorie
budget through a standardized protocol. The server communicates via
stdin/stdout.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "kcal": {
        "command": "kcal",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  get_profile      Body metrics and daily goal
  set_profile      Save body metrics and recompute the goal
  add_entry        Log a food entry
  list_entries     List recent entries
  delete_entry     Delete an entry by ID
  daily_summary    Eaten, goal, and remaining for a day
  weekly_summary   Calories per day
  chat_context     Profile and today's meals as text
  suggest_food     Typical calories for common foods

AVAILABLE RESOURCES:

  kcal://today     Today's entries and totals
  kcal://week      Last 7 days
  kcal://profile   Body profile`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(trk)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
