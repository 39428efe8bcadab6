package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/courtside/game-video/internal/transcode"
	"github.com/courtside/game-video/internal/video"
)

// newParseKeyCmd prints the upload trigger's decision for a key.
func newParseKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-key <key>",
		Short: "Show whether the upload trigger would accept an S3 key",
		Long: `parse-key applies the upload trigger's filters to a key. The key may be given
URL-encoded, exactly as it appears in an S3 event notification.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := video.DecodeObjectKey(args[0])
			if err != nil {
				return fmt.Errorf("decode key: %w", err)
			}
			out := cmd.OutOrStdout()
			upload, ok := video.ParseUploadKey(key)
			if !ok {
				fmt.Fprintf(out, "key:     %s\ndecision: skip\n", key)
				return nil
			}
			gameID := upload.GameID
			if gameID == "" {
				gameID = "(none, record will not be updated)"
			}
			fmt.Fprintf(out, "key:     %s\ndecision: submit\ngameId:  %s\noutput:  %s\n", key, gameID, upload.OutputPrefix)
			return nil
		},
	}
}

// newJobSettingsCmd prints the CreateJob request the submitter would send.
func newJobSettingsCmd() *cobra.Command {
	var bucket, role, queue string
	cmd := &cobra.Command{
		Use:   "job-settings <key>",
		Short: "Print the MediaConvert CreateJob request for a raw upload key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if bucket == "" {
				return fmt.Errorf("--bucket or MEDIA_BUCKET_NAME is required")
			}
			upload, ok := video.ParseUploadKey(args[0])
			if !ok {
				return fmt.Errorf("%s is not a raw game video key", args[0])
			}
			s := transcode.NewSubmitter(nil, nil, transcode.Config{Bucket: bucket, RoleARN: role, QueueARN: queue})
			in := s.BuildJobInput(upload.Key, upload.OutputPrefix, upload.GameID)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(in)
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", os.Getenv("MEDIA_BUCKET_NAME"), "Media bucket (default $MEDIA_BUCKET_NAME)")
	cmd.Flags().StringVar(&role, "role", os.Getenv("MEDIACONVERT_ROLE_ARN"), "MediaConvert role ARN (default $MEDIACONVERT_ROLE_ARN)")
	cmd.Flags().StringVar(&queue, "queue", os.Getenv("MEDIACONVERT_QUEUE_ARN"), "MediaConvert queue ARN (default $MEDIACONVERT_QUEUE_ARN)")
	return cmd
}
