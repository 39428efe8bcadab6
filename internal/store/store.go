// Package store persists the video-processing lifecycle fields of a Game
// record. The Game table is owned by the app's data layer (one item per game,
// partition key "id"); this package only ever touches the processing subset:
// videoProcessingStatus, mediaConvertJobId, processedVideoUrls, thumbnailUrls,
// and updatedAt.
//
// Every write is a single UpdateItem guarded by attribute_exists(id), so the
// pipeline never creates a game that the app does not know about. There is no
// version check: concurrent writers race and the last write wins.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/courtside/game-video/internal/video"
)

// ErrGameNotFound is returned by writes when no Game item exists for the id.
var ErrGameNotFound = errors.New("game not found")

// GameStore defines the operations the pipeline performs on a Game record.
//
// GetProcessingRecord returns (nil, nil) when the game does not exist.
type GameStore interface {
	// MarkProcessing records a submitted job: status=PROCESSING, mediaConvertJobId=jobID.
	MarkProcessing(ctx context.Context, gameID, jobID string) error

	// MarkSubmitFailed records a failed submission: status=FAILED and the job
	// id from any earlier attempt removed.
	MarkSubmitFailed(ctx context.Context, gameID string) error

	// MarkJobFailed records a job that reached ERROR: status=FAILED, URL
	// fields left untouched.
	MarkJobFailed(ctx context.Context, gameID string) error

	// MarkCompleted writes status=COMPLETED together with both URL fields in one update.
	MarkCompleted(ctx context.Context, gameID string, renditions map[string]string, thumbnails []string) error

	// GetProcessingRecord reads the processing subset of a Game record.
	GetProcessingRecord(ctx context.Context, gameID string) (*ProcessingRecord, error)
}

// ProcessingRecord is the decoded processing subset of a Game record.
type ProcessingRecord struct {
	GameID             string            `json:"gameId"`
	Status             video.Status      `json:"videoProcessingStatus"`
	MediaConvertJobID  string            `json:"mediaConvertJobId,omitempty"`
	ProcessedVideoURLs map[string]string `json:"processedVideoUrls,omitempty"`
	ThumbnailURLs      []string          `json:"thumbnailUrls,omitempty"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

// gameItem mirrors the stored attributes. The URL fields are JSON-encoded
// strings because the app's schema declares them as AWSJSON.
type gameItem struct {
	ID                 string `dynamodbav:"id"`
	Status             string `dynamodbav:"videoProcessingStatus,omitempty"`
	MediaConvertJobID  string `dynamodbav:"mediaConvertJobId,omitempty"`
	ProcessedVideoURLs string `dynamodbav:"processedVideoUrls,omitempty"`
	ThumbnailURLs      string `dynamodbav:"thumbnailUrls,omitempty"`
	UpdatedAt          string `dynamodbav:"updatedAt,omitempty"`
}
