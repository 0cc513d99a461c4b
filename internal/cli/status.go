package cli

import (
	"github.com/spf13/cobra"

	"github.com/petcare-labs/petcare/internal/status"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show gateway readiness",
		Long: `Show whether the gateway is ready to serve requests and which
storage backend it uses. Exits non-zero when a readiness check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			health, err := c.newGatewayClient().GetStatus(ctx)
			if err != nil && health.Status == "" {
				return err
			}
			if c.jsonOutput {
				if jerr := c.outputJSON(health); jerr != nil {
					return jerr
				}
			} else {
				c.printf("%s", status.FormatHealth(health))
			}
			return err
		},
	}
}

func (c *CLI) newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Request audit commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Show aggregate request counts",
		Long: `Show request totals by route and status since the gateway started.
Individual request records are only in the gateway logs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			summary, err := c.newGatewayClient().GetAuditSummary(ctx)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.outputJSON(summary)
			}
			c.printf("%s", status.FormatAuditSummary(summary))
			return nil
		},
	})
	return cmd
}
