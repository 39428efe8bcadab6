// Package main provides the Lambda entry point for raw game video uploads.
//
// Triggered by S3 ObjectCreated events on the media bucket. For each key under
// protected/game-videos/ with a video extension it:
//
//  1. Tags the object for cost allocation
//  2. Submits a MediaConvert job (1080p + 720p MP4, JPEG thumbnails)
//  3. Marks the owning Game record PROCESSING, or FAILED if submission failed
//
// Other keys, including the pipeline's own processed output, are skipped.
// Per-file failures are logged and never fail the batch.
package main

import (
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/courtside/game-video/internal/lambdaboot"
	"github.com/courtside/game-video/internal/logging"
	"github.com/courtside/game-video/internal/s3util"
	"github.com/courtside/game-video/internal/statusevents"
	"github.com/courtside/game-video/internal/transcode"
	"github.com/courtside/game-video/internal/upload"
)

var trigger *upload.Trigger

func init() {
	initStart := time.Now()
	logging.Init()

	awsClients := lambdaboot.InitAWS()
	s3s := lambdaboot.InitS3(awsClients.Config, lambdaboot.MediaBucketEnvVar)
	gameStore := lambdaboot.InitGameStore(awsClients.Config, lambdaboot.GameTableEnvVar)
	publisher := lambdaboot.InitEventPublisher(awsClients.Config)

	cfg := transcode.Config{
		Bucket:   s3s.Bucket,
		RoleARN:  lambdaboot.LoadMediaConvertRole(awsClients.SSM),
		QueueARN: os.Getenv(lambdaboot.QueueARNEnvVar),
	}
	submitter := transcode.NewSubmitter(
		lambdaboot.InitMediaConvert(awsClients.Config),
		statusevents.WithEvents(gameStore, publisher),
		cfg,
	)
	trigger = upload.NewTrigger(submitter, s3util.NewTagger(s3s.Client))

	startup := lambdaboot.StartupLog("upload-trigger-lambda", initStart).
		S3Bucket("media", s3s.Bucket).
		DynamoTable("games", gameStore.TableName()).
		MediaConvert("role", cfg.RoleARN).
		MediaConvert("queue", cfg.QueueARN).
		MediaConvert("endpoint", os.Getenv(lambdaboot.EndpointEnvVar)).
		Feature("statusEvents", publisher != nil).
		Feature("tagging", true)
	if os.Getenv(lambdaboot.RoleARNEnvVar) == "" {
		startup.SSMParam("mediaConvertRole", logging.EnvOrDefault(lambdaboot.RoleParamEnvVar, lambdaboot.DefaultRoleParam))
	}
	if bus := os.Getenv(lambdaboot.EventBusEnvVar); bus != "" {
		startup.EventBus("status", bus)
	}
	startup.Log()
}

func main() {
	lambda.Start(trigger.HandleS3Event)
}
