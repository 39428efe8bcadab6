// Package statusevents announces Game video status transitions on an
// EventBridge bus so other parts of the app (notifications, the live game
// view) can react without polling the Game table.
package statusevents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	eventbridgetypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/rs/zerolog/log"

	"github.com/courtside/game-video/internal/video"
)

const (
	Source     = "courtside.video"
	DetailType = "Game Video Status Changed"
)

// StatusChanged is the event detail.
type StatusChanged struct {
	GameID             string            `json:"gameId"`
	Status             video.Status      `json:"status"`
	MediaConvertJobID  string            `json:"mediaConvertJobId,omitempty"`
	ProcessedVideoURLs map[string]string `json:"processedVideoUrls,omitempty"`
	ThumbnailURLs      []string          `json:"thumbnailUrls,omitempty"`
	Timestamp          string            `json:"timestamp"`
}

// EventBridgeAPI is the subset of the EventBridge client used by Publisher.
type EventBridgeAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Publisher puts StatusChanged events on one bus.
type Publisher struct {
	client  EventBridgeAPI
	busName string
}

// NewPublisher creates a Publisher for the named bus.
func NewPublisher(client EventBridgeAPI, busName string) *Publisher {
	return &Publisher{client: client, busName: busName}
}

// Publish sends a single event. A rejected entry is reported as an error.
func (p *Publisher) Publish(ctx context.Context, event StatusChanged) error {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	detail, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal StatusChanged: %w", err)
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []eventbridgetypes.PutEventsRequestEntry{
			{
				EventBusName: aws.String(p.busName),
				Source:       aws.String(Source),
				DetailType:   aws.String(DetailType),
				Detail:       aws.String(string(detail)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("PutEvents: %w", err)
	}

	if result.FailedEntryCount > 0 {
		for i, entry := range result.Entries {
			if entry.ErrorCode != nil || entry.ErrorMessage != nil {
				return fmt.Errorf("PutEvents entry %d failed: %s - %s", i, aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage))
			}
		}
		return fmt.Errorf("PutEvents reported %d failed entries", result.FailedEntryCount)
	}

	log.Debug().Str("gameId", event.GameID).Str("status", string(event.Status)).Msg("Status change emitted to EventBridge")
	return nil
}
