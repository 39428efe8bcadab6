package statusevents

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/courtside/game-video/internal/store"
	"github.com/courtside/game-video/internal/video"
)

// NotifyingStore wraps a GameStore and publishes a StatusChanged event after
// every successful write. Publish failures are logged and never surface to
// the caller: the record write is what counts.
type NotifyingStore struct {
	store.GameStore
	publisher *Publisher
}

// Compile-time interface check.
var _ store.GameStore = (*NotifyingStore)(nil)

// WithEvents returns s unchanged when p is nil.
func WithEvents(s store.GameStore, p *Publisher) store.GameStore {
	if p == nil {
		return s
	}
	return &NotifyingStore{GameStore: s, publisher: p}
}

func (n *NotifyingStore) MarkProcessing(ctx context.Context, gameID, jobID string) error {
	if err := n.GameStore.MarkProcessing(ctx, gameID, jobID); err != nil {
		return err
	}
	n.emit(ctx, StatusChanged{GameID: gameID, Status: video.StatusProcessing, MediaConvertJobID: jobID})
	return nil
}

func (n *NotifyingStore) MarkSubmitFailed(ctx context.Context, gameID string) error {
	if err := n.GameStore.MarkSubmitFailed(ctx, gameID); err != nil {
		return err
	}
	n.emit(ctx, StatusChanged{GameID: gameID, Status: video.StatusFailed})
	return nil
}

func (n *NotifyingStore) MarkJobFailed(ctx context.Context, gameID string) error {
	if err := n.GameStore.MarkJobFailed(ctx, gameID); err != nil {
		return err
	}
	n.emit(ctx, StatusChanged{GameID: gameID, Status: video.StatusFailed})
	return nil
}

func (n *NotifyingStore) MarkCompleted(ctx context.Context, gameID string, renditions map[string]string, thumbnails []string) error {
	if err := n.GameStore.MarkCompleted(ctx, gameID, renditions, thumbnails); err != nil {
		return err
	}
	n.emit(ctx, StatusChanged{
		GameID:             gameID,
		Status:             video.StatusCompleted,
		ProcessedVideoURLs: renditions,
		ThumbnailURLs:      thumbnails,
	})
	return nil
}

func (n *NotifyingStore) emit(ctx context.Context, event StatusChanged) {
	if err := n.publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("gameId", event.GameID).Str("status", string(event.Status)).Msg("Failed to publish status change (non-fatal)")
	}
}
