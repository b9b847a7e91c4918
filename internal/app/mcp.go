package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/workclock/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server exposing the tracker",
	Long: `Start a Model Context Protocol stdio server that forwards to the running
workclock server. The server exposes these tools:

  get_status      Manual and automatic sessions with live totals and goal progress
  start_session   Start or resume the manual session
  pause_session   Pause the manual session
  stop_session    Stop the manual session
  get_reports     Daily, weekly or monthly totals
  get_app_usage   Today's time per application and category

Example MCP client configuration:
  {"mcpServers":{"workclock":{"command":"workclock","args":["mcp"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	c, _, err := newClient()
	if err != nil {
		return err
	}
	srv := mcp.NewServer(c, appVersion)
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
