package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Long: `Create the users, workouts, exercises and sets tables (sqlite, postgres)
or the collection indexes (mongo). Safe to run repeatedly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			// run it here even when auto_migrate is off
			cfg.Database.AutoMigrate = false
			c.cfg = cfg

			a, err := c.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			if err := a.Store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", cfg.Database.Driver)
			return nil
		},
	}
}
