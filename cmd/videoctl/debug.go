package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/courtside/game-video/internal/cli"
)

// newReplayCmd invokes a pipeline Lambda with a saved event, typically a
// MediaConvert Job State Change captured from the EventBridge archive.
func newReplayCmd(g *globalFlags) *cobra.Command {
	var function, eventPath string
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Invoke a pipeline Lambda with a saved event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := cli.ReadEventFile(eventPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			cfg := cli.LoadAWSConfig(ctx, g.profile, g.region)
			client := lambdasvc.NewFromConfig(cfg)

			log.Info().Str("function", function).Str("event", eventPath).Msg("Replaying event")
			out, err := client.Invoke(ctx, &lambdasvc.InvokeInput{
				FunctionName: aws.String(function),
				Payload:      payload,
			})
			if err != nil {
				return fmt.Errorf("invoke %s: %w", function, err)
			}
			if out.FunctionError != nil {
				return fmt.Errorf("%s returned %s: %s", function, aws.ToString(out.FunctionError), out.Payload)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status %d: %s\n", out.StatusCode, out.Payload)
			return nil
		},
	}
	cmd.Flags().StringVar(&function, "function", "", "Lambda function name or ARN")
	cmd.Flags().StringVar(&eventPath, "event", "", "Path to the saved event JSON")
	cmd.MarkFlagRequired("function")
	cmd.MarkFlagRequired("event")
	return cmd
}

// newLogsCmd searches the pipeline log groups for lines mentioning a game.
func newLogsCmd(g *globalFlags) *cobra.Command {
	var groups []string
	var since time.Duration
	var limit int
	cmd := &cobra.Command{
		Use:   "logs <gameId>",
		Short: "Search pipeline Lambda logs for a game id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID := args[0]
			ctx := cmd.Context()
			cfg := cli.LoadAWSConfig(ctx, g.profile, g.region)
			client := cloudwatchlogs.NewFromConfig(cfg)
			out := cmd.OutOrStdout()

			printed := 0
			for _, group := range groups {
				p := cloudwatchlogs.NewFilterLogEventsPaginator(client, &cloudwatchlogs.FilterLogEventsInput{
					LogGroupName:  aws.String(group),
					FilterPattern: aws.String(logFilterPattern(gameID)),
					StartTime:     aws.Int64(time.Now().Add(-since).UnixMilli()),
				})
				for p.HasMorePages() && printed < limit {
					page, err := p.NextPage(ctx)
					if err != nil {
						return fmt.Errorf("filter %s: %w", group, err)
					}
					for _, evt := range page.Events {
						if printed >= limit {
							break
						}
						msg := strings.TrimRight(aws.ToString(evt.Message), "\n")
						fmt.Fprintf(out, "%s %s %s\n", cli.FormatMillis(aws.ToInt64(evt.Timestamp)), group, msg)
						printed++
					}
				}
			}
			log.Debug().Int("events", printed).Strs("groups", groups).Msg("Log search complete")
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&groups, "group", nil, "Log group to search (repeatable)")
	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "How far back to search")
	cmd.Flags().IntVar(&limit, "limit", 200, "Maximum events to print")
	cmd.MarkFlagRequired("group")
	return cmd
}

// logFilterPattern matches the game id as a quoted term so that ids
// containing spaces or dashes are not split into separate terms.
func logFilterPattern(gameID string) string {
	return fmt.Sprintf("%q", gameID)
}
