package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskpet/internal/mcp"
	"github.com/1broseidon/deskpet/internal/peers"
)

func newMCPCmd() *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol integration",
	}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "start the MCP server on stdio",
		Long: "Start the MCP server on stdio. Designed to be invoked by MCP clients.\n\n" +
			"The server exposes list_pets, pet_status and pet_command.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := peers.OpenRegistry()
			if err != nil {
				return err
			}
			// stdout carries the protocol; logs go to stderr.
			logger := newLogger(os.Stderr, nil)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return mcp.NewServer(registry, logger).Run(ctx)
		},
	}
	mcpCmd.AddCommand(serveCmd)
	return mcpCmd
}
