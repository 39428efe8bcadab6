// Package completion consumes MediaConvert "Job State Change" events from
// EventBridge and writes the job's final outcome to the owning Game record.
//
// The listener never returns an error for a delivered event: malformed
// payloads, events without a game id, and record write failures are logged
// and the event is treated as handled. Redelivery is left to EventBridge.
package completion

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"

	"github.com/courtside/game-video/internal/jobutil"
	"github.com/courtside/game-video/internal/metrics"
	"github.com/courtside/game-video/internal/store"
	"github.com/courtside/game-video/internal/video"
)

// Listener applies job state changes to Game records.
type Listener struct {
	store store.GameStore
}

// NewListener creates a Listener writing through st.
func NewListener(st store.GameStore) *Listener {
	return &Listener{store: st}
}

// Handle is the Lambda entry point for EventBridge deliveries.
func (l *Listener) Handle(ctx context.Context, evt events.CloudWatchEvent) error {
	var change video.JobStateChange
	if err := json.Unmarshal(evt.Detail, &change); err != nil {
		log.Error().Err(err).Str("eventId", evt.ID).Str("detailType", evt.DetailType).Msg("Malformed job state change, discarding")
		l.discarded("malformed")
		return nil
	}
	l.Apply(ctx, change)
	return nil
}

// Apply writes the outcome of one job state change.
func (l *Listener) Apply(ctx context.Context, change video.JobStateChange) {
	gameID := change.GameID()
	logger := log.With().Str("jobId", change.JobID).Str("status", change.Status).Str("gameId", gameID).Logger()

	if gameID == "" {
		logger.Warn().Interface("userMetadata", change.UserMetadata).Msg("Job state change has no GameId in user metadata, discarding")
		l.discarded("noGameId")
		return
	}

	switch change.Status {
	case video.JobStatusComplete:
		paths := change.OutputFilePaths()
		renditions := video.RenditionURLs(paths)
		thumbnails := video.ThumbnailURLs(paths)
		logger.Info().
			Int("outputPaths", len(paths)).
			Int("renditions", len(renditions)).
			Int("thumbnails", len(thumbnails)).
			Msg("Transcode job complete")

		if err := l.store.MarkCompleted(ctx, gameID, renditions, thumbnails); err != nil {
			logger.Error().Err(err).Msg("Failed to record COMPLETED status")
			l.writeFailed(gameID)
			return
		}
		metrics.New().
			Dimension("Operation", "complete").
			Count(metrics.JobsCompleted).
			Property("gameId", gameID).
			Property("jobId", change.JobID).
			Property("thumbnails", len(thumbnails)).
			Flush()

	case video.JobStatusError:
		reason := change.ErrorMessage
		if reason == "" {
			reason = "MediaConvert reported ERROR"
		}
		if err := jobutil.RecordFailure(ctx, gameID, change.JobID, reason, l.store.MarkJobFailed); err != nil {
			logger.Error().Err(err).Msg("Failed to record FAILED status")
			l.writeFailed(gameID)
			return
		}
		metrics.New().
			Dimension("Operation", "complete").
			Count(metrics.JobsFailed).
			Property("gameId", gameID).
			Property("jobId", change.JobID).
			Property("errorCode", change.ErrorCode).
			Flush()

	default:
		logger.Info().Msg("Ignoring non-terminal job state change")
	}
}

func (l *Listener) discarded(reason string) {
	metrics.New().
		Dimension("Operation", "complete").
		Count(metrics.EventsDiscarded).
		Property("reason", reason).
		Flush()
}

func (l *Listener) writeFailed(gameID string) {
	metrics.New().
		Dimension("Operation", "complete").
		Count(metrics.RecordWriteFailures).
		Property("gameId", gameID).
		Flush()
}
