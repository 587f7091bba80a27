package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dhirajnair/pspec/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server exposing the review to AI assistants",
	Long: `Start a Model Context Protocol stdio server. The server exposes three tools:

  review_snippet  Review Python source, optionally with engines disabled
  list_rules      Every analysis and best-practice rule
  explain_rule    Rationale and fix for one rule id or PEP 8 code

Engine defaults come from the config file. Example client configuration:
  {"mcpServers":{"pspec":{"command":"pspec","args":["mcp"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	srv := mcp.NewServer(cfg.ReviewOptions(), appVersion)
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
