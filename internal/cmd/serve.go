package cmd

import (
	"github.com/spf13/cobra"

	"canvasdoc/internal/app"
	"canvasdoc/internal/log"
)

func serveCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "serve",
		Short: "Serve the editor over MCP on stdin/stdout",
		Long: `Serve the editor over the Model Context Protocol on stdin/stdout.

The project is loaded from the configured store, autosaved on the configured
schedule and saved once more on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ServeMCP(cmd.Context(), cfg, log.Get())
		},
	}
	return &cmd
}
