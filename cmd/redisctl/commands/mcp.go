package commands

import (
	"github.com/spf13/cobra"

	"github.com/redisctl/redisctl/pkg/mcp"
	"github.com/redisctl/redisctl/pkg/telemetry"
)

func newMCPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve redisctl tools over MCP on stdio",
		Long: `Serve redisctl over the Model Context Protocol on stdin/stdout.

Exposed tools: workflow_list, workflow_run, cloud_api_get and
enterprise_api_get. Credentials come from the same profiles and
environment variables the CLI uses.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			reg, err := buildRegistry()
			if err != nil {
				return err
			}
			server := mcp.NewServer(cfg, reg, telemetry.FromContext(cmd.Context()))
			return server.Serve(cmd.Context())
		},
	})

	return cmd
}
