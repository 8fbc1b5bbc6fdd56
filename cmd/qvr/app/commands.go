// Package app provides the entry point for the quiver command-line
// application.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quiver-mcp/quiver/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:               "qvr",
	DisableAutoGenTag: true,
	Short:             "Quiver (qvr) exposes Qdrant vector databases as MCP tools",
	Long: `Quiver (qvr) is an MCP (Model Context Protocol) server that exposes one or
more Qdrant vector database clusters as callable tools.

It routes tool calls to named clusters, admits them through a sliding-window
rate limiter, and hands out opaque cursors so paged collection scans can be
resumed across otherwise stateless tool invocations.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.Initialize()
	},
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		if err := cmd.Help(); err != nil {
			logger.Errorf("Error displaying help: %v", err)
		}
	},
}

// NewRootCmd creates a new root command for the quiver CLI.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
