package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-tracker/internal/backup"
	"github.com/spec-kit/ticket-tracker/internal/clock"
)

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Upload the four CSV files to S3 (BACKUP_S3_BUCKET)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uploader, err := backup.NewS3Uploader(cmd.Context(), a.cfg.Backup)
			if err != nil {
				return err
			}
			b := backup.New(backup.Dependencies{
				Uploader: uploader,
				Prefix:   a.cfg.Backup.Prefix,
				Clock:    clock.Real(),
				Logger:   a.logger,
			})
			locations, err := b.Run(cmd.Context(), a.cfg.Storage.Files())
			if err != nil {
				return err
			}
			for _, location := range locations {
				cmd.Println(location)
			}
			return nil
		},
	}
}
