package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/issueforge/internal/mcptools"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Expose the pipeline as MCP tools over HTTP",
	Long: `Start an MCP server exposing generate_issue, list_units, and
scan_symbols as tools for agent hosts. The server runs until interrupted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("%s MCP server listening on %s\n", color.GreenString("✓"), color.CyanString(serveAddr))
		return mcptools.Serve(ctx, mcptools.NewService(cfg), version, serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address for the MCP HTTP server")
}
