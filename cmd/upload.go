package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func uploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file to the configured S3 bucket",
		Long: "Upload a file to s3.bucket. The object key is the file name, under\n" +
			"s3.folder when one is set.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.S3.Bucket == "" {
				return errors.New("no bucket: pass --bucket or set s3.bucket")
			}
			u, err := a.uploader(cmd.Context())
			if err != nil {
				return err
			}
			key, err := u.Upload(cmd.Context(), args[0], a.cfg.S3.Bucket, a.cfg.S3.Folder)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Uploaded s3://%s/%s\n", a.cfg.S3.Bucket, key)
			return nil
		},
	}
}
