// Package upload reacts to S3 ObjectCreated notifications for raw game video
// uploads and hands each accepted file to the transcode submitter.
package upload

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"

	"github.com/courtside/game-video/internal/metrics"
	"github.com/courtside/game-video/internal/video"
)

// Submitter starts a transcode job for one upload.
type Submitter interface {
	Submit(ctx context.Context, inputKey, outputPrefix, gameID string) (string, error)
}

// ObjectTagger applies cost-allocation tags to an uploaded object.
type ObjectTagger interface {
	TagObject(ctx context.Context, bucket, key string) error
}

// Trigger filters upload notifications and submits transcode jobs.
type Trigger struct {
	submitter Submitter
	tagger    ObjectTagger
}

// NewTrigger creates a Trigger. tagger may be nil to skip tagging.
func NewTrigger(submitter Submitter, tagger ObjectTagger) *Trigger {
	return &Trigger{submitter: submitter, tagger: tagger}
}

// HandleS3Event processes every record in the notification. A failure on one
// file is logged and never stops the rest of the batch, so the Lambda always
// reports success.
func (t *Trigger) HandleS3Event(ctx context.Context, evt events.S3Event) error {
	for _, record := range evt.Records {
		bucket := record.S3.Bucket.Name
		rawKey := record.S3.Object.Key
		if err := t.HandleObject(ctx, bucket, rawKey); err != nil {
			log.Error().Err(err).Str("bucket", bucket).Str("key", rawKey).Msg("Failed to process upload")
		}
	}
	return nil
}

// HandleObject runs the pipeline for one notified object. rawKey is the
// URL-encoded key as it appears in the notification. Skipped keys return nil.
func (t *Trigger) HandleObject(ctx context.Context, bucket, rawKey string) error {
	key, err := video.DecodeObjectKey(rawKey)
	if err != nil {
		return fmt.Errorf("decode key %q: %w", rawKey, err)
	}

	upload, ok := video.ParseUploadKey(key)
	if !ok {
		log.Debug().Str("key", key).Msg("Skipping key: not a raw game video upload")
		metrics.New().
			Dimension("Operation", "upload").
			Count(metrics.UploadsSkipped).
			Property("key", key).
			Flush()
		return nil
	}

	log.Info().
		Str("bucket", bucket).
		Str("key", key).
		Str("gameId", upload.GameID).
		Str("outputPrefix", upload.OutputPrefix).
		Msg("Raw game video uploaded")

	if t.tagger != nil {
		if err := t.tagger.TagObject(ctx, bucket, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to tag uploaded object (non-fatal)")
		}
	}

	if _, err := t.submitter.Submit(ctx, upload.Key, upload.OutputPrefix, upload.GameID); err != nil {
		return fmt.Errorf("submit %s: %w", key, err)
	}
	return nil
}
