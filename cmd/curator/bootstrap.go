package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kangruixiang/curator/internal/curator"
)

func newBootstrapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Wait for PocketBase and create the Inbox notebook and the notes search index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}
			client := newClient(cfg.PocketBase)
			defer func() {
				_ = client.Close()
			}()

			if err := curator.Bootstrap(cmd.Context(), client, client, curator.BootstrapConfig{
				Email:         cfg.PocketBase.SuperuserEmail,
				Password:      cfg.PocketBase.SuperuserPassword,
				HealthRetries: cfg.PocketBase.HealthRetries,
				HealthDelay:   cfg.PocketBase.HealthDelay,
			}); err != nil {
				return fmt.Errorf("curator.Bootstrap() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "pocketbase is ready")
			return nil
		},
	}
}
