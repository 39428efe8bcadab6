package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/courtside/game-video/internal/cli"
	"github.com/courtside/game-video/internal/lambdaboot"
	"github.com/courtside/game-video/internal/statusevents"
	"github.com/courtside/game-video/internal/store"
	"github.com/courtside/game-video/internal/transcode"
	"github.com/courtside/game-video/internal/video"
)

func requireTable(g *globalFlags) error {
	if g.table == "" {
		return fmt.Errorf("--table or GAME_TABLE_NAME is required")
	}
	return nil
}

// newSubmitCmd runs the same submission path as the upload trigger for an
// object that is already in the bucket, e.g. after a transient failure.
func newSubmitCmd(g *globalFlags) *cobra.Command {
	var bucket, queue, endpoint, bus string
	var yes bool
	cmd := &cobra.Command{
		Use:   "submit <key>",
		Short: "Submit a MediaConvert job for an uploaded raw game video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if bucket == "" {
				return fmt.Errorf("--bucket or MEDIA_BUCKET_NAME is required")
			}
			if err := requireTable(g); err != nil {
				return err
			}
			upload, ok := video.ParseUploadKey(args[0])
			if !ok {
				return fmt.Errorf("%s is not a raw game video key", args[0])
			}
			if !yes && !cli.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Submit MediaConvert job for %s?", upload.Key)) {
				fmt.Fprintln(cmd.OutOrStdout(), "aborted")
				return nil
			}

			ctx := cmd.Context()
			cfg := cli.LoadAWSConfig(ctx, g.profile, g.region)
			mc := mediaconvert.NewFromConfig(cfg, func(o *mediaconvert.Options) {
				if endpoint != "" {
					o.BaseEndpoint = &endpoint
				}
			})
			var gameStore store.GameStore = store.NewDynamoStore(dynamodb.NewFromConfig(cfg), g.table)
			if bus != "" {
				gameStore = statusevents.WithEvents(gameStore, statusevents.NewPublisher(eventbridge.NewFromConfig(cfg), bus))
			}

			submitter := transcode.NewSubmitter(mc, gameStore, transcode.Config{
				Bucket:   bucket,
				RoleARN:  lambdaboot.LoadMediaConvertRole(ssm.NewFromConfig(cfg)),
				QueueARN: queue,
			})

			start := time.Now()
			jobID, err := submitter.Submit(ctx, upload.Key, upload.OutputPrefix, upload.GameID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "submitted job %s in %s\n", jobID, cli.FormatDurationShort(time.Since(start)))
			return nil
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", os.Getenv(lambdaboot.MediaBucketEnvVar), "Media bucket (default $MEDIA_BUCKET_NAME)")
	cmd.Flags().StringVar(&queue, "queue", os.Getenv(lambdaboot.QueueARNEnvVar), "MediaConvert queue ARN (default $MEDIACONVERT_QUEUE_ARN)")
	cmd.Flags().StringVar(&endpoint, "endpoint", os.Getenv(lambdaboot.EndpointEnvVar), "MediaConvert account endpoint (default $MEDIACONVERT_ENDPOINT)")
	cmd.Flags().StringVar(&bus, "event-bus", os.Getenv(lambdaboot.EventBusEnvVar), "EventBridge bus for status events (default $VIDEO_EVENT_BUS_NAME)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// newStatusCmd prints a game's processing record.
func newStatusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status <gameId>",
		Short: "Print the video processing record of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTable(g); err != nil {
				return err
			}
			ctx := cmd.Context()
			cfg := cli.LoadAWSConfig(ctx, g.profile, g.region)
			gameStore := store.NewDynamoStore(dynamodb.NewFromConfig(cfg), g.table)

			rec, err := gameStore.GetProcessingRecord(ctx, args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("game %s: %w", args[0], store.ErrGameNotFound)
			}
			return printRecord(cmd, rec, time.Now())
		},
	}
}

func printRecord(cmd *cobra.Command, rec *store.ProcessingRecord, now time.Time) error {
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return err
	}
	if !rec.UpdatedAt.IsZero() {
		fmt.Fprintf(out, "status %s, last updated %s ago\n", rec.Status, cli.FormatDurationShort(now.Sub(rec.UpdatedAt)))
	}
	log.Debug().Str("gameId", rec.GameID).Bool("terminal", rec.Status.Terminal()).Msg("Record printed")
	return nil
}
