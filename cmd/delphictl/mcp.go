package main

import (
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the collection search tools over stdio",
	Long: `Starts an MCP server on stdin/stdout exposing list_collections and
search_collection, for assistants that launch their tools as subprocesses.
The API server exposes the same tools over HTTP at /mcp.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		server, err := a.MCPServer()
		if err != nil {
			return err
		}
		return server.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
