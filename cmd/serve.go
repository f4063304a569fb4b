package main

import (
	"github.com/spf13/cobra"

	"jira-mcp/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over HTTP for every tenant in the credential registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.newHandler()
			if err != nil {
				return err
			}
			return server.New(a.cfg.Server, h).Run(cmd.Context())
		},
	}
	cmd.Flags().String("address", "", "Listen address (default :8080)")
	mustBind(a.v, "server.address", cmd.Flags().Lookup("address"))
	return cmd
}
