// Package main provides the Lambda entry point for MediaConvert job state
// changes.
//
// Triggered by an EventBridge rule on source aws.mediaconvert with detail-type
// "MediaConvert Job State Change". COMPLETE events record the rendition and
// thumbnail URLs on the Game record and mark it COMPLETED. ERROR events mark it
// FAILED. Events without a GameId in their user metadata are discarded.
package main

import (
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/courtside/game-video/internal/completion"
	"github.com/courtside/game-video/internal/lambdaboot"
	"github.com/courtside/game-video/internal/logging"
	"github.com/courtside/game-video/internal/statusevents"
)

var listener *completion.Listener

func init() {
	initStart := time.Now()
	logging.Init()

	awsClients := lambdaboot.InitAWS()
	gameStore := lambdaboot.InitGameStore(awsClients.Config, lambdaboot.GameTableEnvVar)
	publisher := lambdaboot.InitEventPublisher(awsClients.Config)
	listener = completion.NewListener(statusevents.WithEvents(gameStore, publisher))

	startup := lambdaboot.StartupLog("transcode-complete-lambda", initStart).
		DynamoTable("games", gameStore.TableName()).
		Feature("statusEvents", publisher != nil)
	if bus := os.Getenv(lambdaboot.EventBusEnvVar); bus != "" {
		startup.EventBus("status", bus)
	}
	startup.Log()
}

func main() {
	lambda.Start(listener.Handle)
}
