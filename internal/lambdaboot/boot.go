// Package lambdaboot provides shared Lambda cold-start bootstrap logic.
//
// Every Lambda in the pipeline needs some subset of: AWS config, the Game
// table, the media bucket, MediaConvert, the status event bus, and startup
// logging. Each Lambda's init() is a short composition of these helpers.
package lambdaboot

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/courtside/game-video/internal/logging"
	"github.com/courtside/game-video/internal/statusevents"
	"github.com/courtside/game-video/internal/store"
)

// Environment variables shared by the pipeline Lambdas and videoctl.
const (
	GameTableEnvVar   = "GAME_TABLE_NAME"
	MediaBucketEnvVar = "MEDIA_BUCKET_NAME"
	RoleARNEnvVar     = "MEDIACONVERT_ROLE_ARN"
	RoleParamEnvVar   = "SSM_MEDIACONVERT_ROLE_PARAM"
	EndpointEnvVar    = "MEDIACONVERT_ENDPOINT"
	QueueARNEnvVar    = "MEDIACONVERT_QUEUE_ARN"
	EventBusEnvVar    = "VIDEO_EVENT_BUS_NAME"
	DefaultRoleParam  = "/courtside/prod/mediaconvert-role-arn"
)

// AWSClients holds the core AWS SDK clients used across Lambdas.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// S3Clients holds the S3 client and bucket name.
type S3Clients struct {
	Client *s3.Client
	Bucket string
}

// InitAWS loads the default AWS config and returns it along with common clients.
func InitAWS() AWSClients {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}
}

// InitS3 creates an S3 client and reads the bucket name from the given
// environment variable. Fatals if the env var is empty.
func InitS3(cfg aws.Config, bucketEnvVar string) S3Clients {
	bucket := os.Getenv(bucketEnvVar)
	if bucket == "" {
		log.Fatal().Str("envVar", bucketEnvVar).Msg("Bucket environment variable is required")
	}
	return S3Clients{
		Client: s3.NewFromConfig(cfg),
		Bucket: bucket,
	}
}

// InitGameStore creates the DynamoDB-backed Game store from the table name
// environment variable. Fatals if the env var is empty.
func InitGameStore(cfg aws.Config, tableEnvVar string) *store.DynamoStore {
	tableName := os.Getenv(tableEnvVar)
	if tableName == "" {
		log.Fatal().Str("envVar", tableEnvVar).Msg("DynamoDB table environment variable is required")
	}
	return store.NewDynamoStore(dynamodb.NewFromConfig(cfg), tableName)
}

// InitMediaConvert creates a MediaConvert client. Older accounts must call an
// account-specific endpoint, which MEDIACONVERT_ENDPOINT overrides.
func InitMediaConvert(cfg aws.Config) *mediaconvert.Client {
	endpoint := os.Getenv(EndpointEnvVar)
	return mediaconvert.NewFromConfig(cfg, func(o *mediaconvert.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// ParameterGetter is the subset of the SSM client used to resolve parameters.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// LoadMediaConvertRole returns the IAM role ARN MediaConvert assumes. The
// MEDIACONVERT_ROLE_ARN env var wins; otherwise the SSM parameter named by
// SSM_MEDIACONVERT_ROLE_PARAM is read. Fatals on error.
func LoadMediaConvertRole(ssmClient ParameterGetter) string {
	if arn := os.Getenv(RoleARNEnvVar); arn != "" {
		return arn
	}
	paramName := logging.EnvOrDefault(RoleParamEnvVar, DefaultRoleParam)
	ssmStart := time.Now()
	result, err := ssmClient.GetParameter(context.Background(), &ssm.GetParameterInput{
		Name: &paramName,
	})
	if err != nil {
		log.Fatal().Err(err).Str("param", paramName).Msg("Failed to read MediaConvert role from SSM")
	}
	arn := aws.ToString(result.Parameter.Value)
	if arn == "" {
		log.Fatal().Str("param", paramName).Msg("MediaConvert role parameter is empty")
	}
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(ssmStart)).Msg("MediaConvert role loaded from SSM")
	return arn
}

// InitEventPublisher creates a status event publisher if VIDEO_EVENT_BUS_NAME
// is set. Returns nil (status events disabled) otherwise.
func InitEventPublisher(cfg aws.Config) *statusevents.Publisher {
	bus := os.Getenv(EventBusEnvVar)
	if bus == "" {
		log.Debug().Msg("VIDEO_EVENT_BUS_NAME not set, status events disabled")
		return nil
	}
	return statusevents.NewPublisher(eventbridge.NewFromConfig(cfg), bus)
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}
