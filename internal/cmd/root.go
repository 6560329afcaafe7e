package cmd

import (
	"github.com/spf13/cobra"

	"canvasdoc/internal/config"
	"canvasdoc/internal/log"
)

var (
	configPath string
	verbose    bool

	cfg config.Config
)

func Root() *cobra.Command {
	cmd := cobra.Command{
		Use:           "canvasdoc",
		Short:         "Multi-page document editor with an MCP interface",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			log.Set(verbose || cfg.Log.Verbose)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Flush()
		},
	}

	pflags := cmd.PersistentFlags()

	pflags.StringVar(&configPath, "config", config.DefaultPath(), "Path to the YAML configuration file.")
	pflags.BoolVarP(&verbose, "verbose", "v", false, "Human readable debug logging on stderr.")

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(exportCmd())
	cmd.AddCommand(pagesCmd())
	cmd.AddCommand(importCmd())

	return &cmd
}
