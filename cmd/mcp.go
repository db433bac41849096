package cmd

import (
	"github.com/huangsam/quotagraph/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the quotagraph MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents read quota charts,
usage bars and store status through standard tools.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
