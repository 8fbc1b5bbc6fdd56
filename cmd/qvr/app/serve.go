package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quiver-mcp/quiver/pkg/config"
	"github.com/quiver-mcp/quiver/pkg/logger"
	"github.com/quiver-mcp/quiver/pkg/mcp/server"
)

var (
	serveConfigFile string
	serveHost       string
	servePort       string
)

// newServeCommand creates the 'serve' subcommand
func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the quiver MCP server",
		Long: `Start the MCP (Model Context Protocol) server that exposes the configured
Qdrant clusters as tools over streamable HTTP.

Clusters, rate limits and the listen address are read from a YAML config file
(quiver.yaml in the working directory by default) and can be overridden with
QUIVER_* environment variables or flags.`,
		RunE: serveCmdFunc,
	}

	cmd.Flags().StringVar(&serveConfigFile, "config", "", "Path to the config file")
	cmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	cmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides config)")

	return cmd
}

// serveCmdFunc is the main function for the serve command
func serveCmdFunc(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.Load(serveConfigFile)
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	srv := server.New(cfg)

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			logger.Errorf("MCP server error: %v", err)
			cancel()
		}
	}()

	// Wait for shutdown signal or server failure
	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}
