package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/authenticator/pkg/logger"
)

func newHealthCmd(c *cli) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Ping the configured storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			started := time.Now()
			if err := c.app.ping(ctx); err != nil {
				return err
			}
			elapsed := time.Since(started)
			c.app.log.DebugContext(ctx, "storage healthy", logger.Backend(c.app.cfg.Storage), logger.Duration(elapsed))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d credentials\n", c.app.cfg.Storage, len(c.app.svc.List()))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "give up after this long")
	return cmd
}
