package cmd

import (
	"github.com/spf13/cobra"

	"github.com/okian/astrocore/internal/server"
	"github.com/okian/astrocore/pkg/logger"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var addr string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				root.cfg.Addr = addr
			}
			return server.Run(cmd.Context(), root.cfg, logger.Get(), nil)
		},
	}
	c.Flags().StringVar(&addr, "addr", "", "listen address, overrides addr from config")
	return c
}
