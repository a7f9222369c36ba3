package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newExportCmd(c *cli) *cobra.Command {
	var expires time.Duration
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Upload every user's workouts to S3",
		Long: `Write one JSON document per user to the s3 bucket under
<s3.prefix>/<uid>/ and print a presigned download link for each.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			exporter, err := a.ExportService(cmd.Context())
			if err != nil {
				return err
			}
			results, err := exporter.ExportAll(cmd.Context(), expires)
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.ExternalID, r.DownloadURL)
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&expires, "expires", 24*time.Hour, "lifetime of the download links")
	return cmd
}
