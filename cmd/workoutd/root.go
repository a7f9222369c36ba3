package main

import (
	"alcyxob/workout-tracker/internal/app"
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/logging"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// cli carries what PersistentPreRunE loads to the subcommands.
type cli struct {
	configPath string
	cfg        config.Config
	log        *logrus.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "workoutd",
		Short: "Workout log service",
		Long: `workoutd serves a per-user workout log over HTTP.

Every request carries an identity provider bearer token; the token's subject
owns the data. A user is created with one empty workout on first read.

CONFIGURATION:

  Settings come from config.yaml in the --config directory, overridden by
  environment variables (database.driver -> DATABASE_DRIVER).

  $ workoutd serve                      # run the HTTP API
  $ workoutd migrate                    # create or upgrade the schema
  $ workoutd seed --uid abc --uid def   # load demo users
  $ workoutd export                     # upload per-user JSON to S3`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log)
			if err != nil {
				return fmt.Errorf("invalid log config: %w", err)
			}
			log.SetOutput(cmd.ErrOrStderr())
			c.cfg = cfg
			c.log = log
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", ".", "directory holding config.yaml")

	root.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newSeedCmd(c),
		newExportCmd(c),
	)
	return root
}

// openApp builds the application for one command run.
func (c *cli) openApp(cmd *cobra.Command) (*app.App, error) {
	return app.New(cmd.Context(), c.cfg, c.log)
}
