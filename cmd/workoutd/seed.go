package main

import (
	"alcyxob/workout-tracker/internal/service"
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd(c *cli) *cobra.Command {
	var uids []string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users",
		Long: `Create one demo user per --uid: user1, user2, ... each with a 2022-10-03
biceps workout of two sets. Users that already exist are left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			created, err := service.SeedFixtures(cmd.Context(), a.Store.Users, uids)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d of %d users\n", created, len(uids))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&uids, "uid", nil, "identity provider uid to seed (repeatable)")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}
