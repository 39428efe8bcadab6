// Package transcode submits MediaConvert jobs for raw game video uploads and
// records the submission outcome on the owning Game record.
package transcode

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/courtside/game-video/internal/jobutil"
	"github.com/courtside/game-video/internal/metrics"
	"github.com/courtside/game-video/internal/store"
	"github.com/courtside/game-video/internal/video"
)

// JobCreator is the subset of the MediaConvert client used by Submitter.
type JobCreator interface {
	CreateJob(ctx context.Context, params *mediaconvert.CreateJobInput, optFns ...func(*mediaconvert.Options)) (*mediaconvert.CreateJobOutput, error)
}

// Config holds the MediaConvert job parameters that do not vary per upload.
type Config struct {
	Bucket   string // bucket holding both the raw upload and the output
	RoleARN  string // IAM role MediaConvert assumes to read and write the bucket
	QueueARN string // optional; the account default queue when empty
}

// Submitter builds and submits one MediaConvert job per upload.
type Submitter struct {
	client   JobCreator
	store    store.GameStore
	cfg      Config
	newToken func() string
}

// NewSubmitter creates a Submitter. st may be shared with the completion listener.
func NewSubmitter(client JobCreator, st store.GameStore, cfg Config) *Submitter {
	return &Submitter{
		client:   client,
		store:    st,
		cfg:      cfg,
		newToken: uuid.NewString,
	}
}

// BuildJobInput assembles the CreateJob request for one upload.
func (s *Submitter) BuildJobInput(inputKey, outputPrefix, gameID string) *mediaconvert.CreateJobInput {
	in := &mediaconvert.CreateJobInput{
		Role: aws.String(s.cfg.RoleARN),
		Settings: BuildJobSettings(
			S3URI(s.cfg.Bucket, inputKey),
			S3URI(s.cfg.Bucket, outputPrefix),
			S3URI(s.cfg.Bucket, ThumbnailPrefix(outputPrefix)),
		),
		ClientRequestToken: aws.String(s.newToken()),
	}
	if s.cfg.QueueARN != "" {
		in.Queue = aws.String(s.cfg.QueueARN)
	}
	if gameID != "" {
		in.UserMetadata = map[string]string{video.UserMetadataGameID: gameID}
	}
	return in
}

// Submit creates the transcode job for inputKey. With a gameID, the Game
// record moves to PROCESSING on success or FAILED on submission error; record
// write failures are logged only. The submission error itself is returned.
// Without a gameID no record is touched.
func (s *Submitter) Submit(ctx context.Context, inputKey, outputPrefix, gameID string) (string, error) {
	start := time.Now()
	log.Info().
		Str("inputKey", inputKey).
		Str("outputPrefix", outputPrefix).
		Str("gameId", gameID).
		Msg("Submitting MediaConvert job")

	out, err := s.client.CreateJob(ctx, s.BuildJobInput(inputKey, outputPrefix, gameID))
	if err == nil && (out == nil || out.Job == nil || aws.ToString(out.Job.Id) == "") {
		err = fmt.Errorf("response carried no job id")
	}
	if err != nil {
		metrics.New().
			Dimension("Operation", "submit").
			Count(metrics.JobSubmitFailures).
			Property("inputKey", inputKey).
			Property("gameId", gameID).
			Flush()

		if gameID != "" {
			if werr := jobutil.RecordFailure(ctx, gameID, "", err.Error(), s.store.MarkSubmitFailed); werr != nil {
				log.Error().Err(werr).Str("gameId", gameID).Msg("Failed to record submission failure")
			}
		}
		return "", fmt.Errorf("create MediaConvert job for %s: %w", inputKey, err)
	}

	jobID := aws.ToString(out.Job.Id)
	elapsed := time.Since(start)
	log.Info().
		Str("jobId", jobID).
		Str("inputKey", inputKey).
		Str("gameId", gameID).
		Dur("elapsed", elapsed).
		Msg("MediaConvert job created")

	metrics.New().
		Dimension("Operation", "submit").
		Duration(metrics.SubmitLatencyMs, elapsed).
		Count(metrics.JobsSubmitted).
		Property("jobId", jobID).
		Property("gameId", gameID).
		Flush()

	if gameID == "" {
		log.Warn().Str("jobId", jobID).Str("inputKey", inputKey).Msg("No game id for upload, status will not be tracked")
		return jobID, nil
	}
	if err := s.store.MarkProcessing(ctx, gameID, jobID); err != nil {
		log.Error().Err(err).Str("gameId", gameID).Str("jobId", jobID).Msg("Failed to record PROCESSING status")
	}
	return jobID, nil
}
