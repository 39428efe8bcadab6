// Package main is videoctl, the operator CLI for the game video pipeline.
//
// Offline commands show what the pipeline would do with a key:
//
//	videoctl parse-key protected/game-videos/g1/clip.mp4
//	videoctl job-settings --bucket courtside-media protected/game-videos/g1/clip.mp4
//
// AWS commands act on a deployed stack using the default credential chain:
//
//	videoctl submit --bucket courtside-media protected/game-videos/g1/clip.mp4
//	videoctl status g1
//	videoctl replay --function transcode-complete --event saved-event.json
//	videoctl logs g1 --group /aws/lambda/upload-trigger --group /aws/lambda/transcode-complete
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/courtside/game-video/internal/logging"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	profile string
	region  string
	table   string
	verbose bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "videoctl",
		Short: "Inspect and drive the game video processing pipeline",
		Long: `videoctl inspects how the pipeline treats an uploaded game video and operates
on a deployed stack: submitting MediaConvert jobs by hand, reading a game's
processing record, replaying completion events, and searching Lambda logs.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init()
			if g.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	root.PersistentFlags().StringVar(&g.profile, "profile", "", "AWS shared config profile")
	root.PersistentFlags().StringVar(&g.region, "region", "", "AWS region (default from the environment)")
	root.PersistentFlags().StringVar(&g.table, "table", os.Getenv("GAME_TABLE_NAME"), "Game DynamoDB table (default $GAME_TABLE_NAME)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newParseKeyCmd(),
		newJobSettingsCmd(),
		newSubmitCmd(g),
		newStatusCmd(g),
		newReplayCmd(g),
		newLogsCmd(g),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
