package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"github.com/courtside/game-video/internal/video"
)

// TimestampLayout matches the ISO-8601 form the app writes for updatedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Attribute names on the Game item.
const (
	attrID         = "id"
	attrStatus     = "videoProcessingStatus"
	attrJobID      = "mediaConvertJobId"
	attrRenditions = "processedVideoUrls"
	attrThumbnails = "thumbnailUrls"
	attrUpdatedAt  = "updatedAt"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoStore implements GameStore against the app's Game table.
type DynamoStore struct {
	client    DynamoAPI
	tableName string
	now       func() time.Time
}

// Compile-time interface check.
var _ GameStore = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore for the given table.
func NewDynamoStore(client DynamoAPI, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

// TableName returns the Game table name.
func (s *DynamoStore) TableName() string {
	return s.tableName
}

func (s *DynamoStore) timestamp() string {
	return s.now().UTC().Format(TimestampLayout)
}

// update runs one conditional UpdateItem against the game's item. The
// expression may reference #s (status) and #u (updatedAt); :u is always bound.
func (s *DynamoStore) update(ctx context.Context, gameID, expr string, names map[string]string, values map[string]types.AttributeValue) error {
	allNames := map[string]string{
		"#id": attrID,
		"#u":  attrUpdatedAt,
	}
	for k, v := range names {
		allNames[k] = v
	}
	allValues := map[string]types.AttributeValue{
		":u": &types.AttributeValueMemberS{Value: s.timestamp()},
	}
	for k, v := range values {
		allValues[k] = v
	}

	start := time.Now()
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			attrID: &types.AttributeValueMemberS{Value: gameID},
		},
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  allNames,
		ExpressionAttributeValues: allValues,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("UpdateItem id=%s: %w", gameID, ErrGameNotFound)
		}
		return fmt.Errorf("UpdateItem id=%s: %w", gameID, err)
	}
	log.Debug().Str("gameId", gameID).Str("expr", expr).Dur("duration", time.Since(start)).Msg("Game processing record updated")
	return nil
}

func statusValue(status video.Status) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: string(status)}
}

func (s *DynamoStore) MarkProcessing(ctx context.Context, gameID, jobID string) error {
	err := s.update(ctx, gameID,
		"SET #s = :s, #j = :j, #u = :u",
		map[string]string{"#s": attrStatus, "#j": attrJobID},
		map[string]types.AttributeValue{
			":s": statusValue(video.StatusProcessing),
			":j": &types.AttributeValueMemberS{Value: jobID},
		})
	if err != nil {
		return fmt.Errorf("mark processing %s (job %s): %w", gameID, jobID, err)
	}
	return nil
}

func (s *DynamoStore) MarkSubmitFailed(ctx context.Context, gameID string) error {
	err := s.update(ctx, gameID,
		"SET #s = :s, #u = :u REMOVE #j",
		map[string]string{"#s": attrStatus, "#j": attrJobID},
		map[string]types.AttributeValue{":s": statusValue(video.StatusFailed)})
	if err != nil {
		return fmt.Errorf("mark submit failed %s: %w", gameID, err)
	}
	return nil
}

func (s *DynamoStore) MarkJobFailed(ctx context.Context, gameID string) error {
	err := s.update(ctx, gameID,
		"SET #s = :s, #u = :u",
		map[string]string{"#s": attrStatus},
		map[string]types.AttributeValue{":s": statusValue(video.StatusFailed)})
	if err != nil {
		return fmt.Errorf("mark job failed %s: %w", gameID, err)
	}
	return nil
}

func (s *DynamoStore) MarkCompleted(ctx context.Context, gameID string, renditions map[string]string, thumbnails []string) error {
	if renditions == nil {
		renditions = map[string]string{}
	}
	if thumbnails == nil {
		thumbnails = []string{}
	}
	renditionsJSON, err := json.Marshal(renditions)
	if err != nil {
		return fmt.Errorf("marshal processedVideoUrls: %w", err)
	}
	thumbnailsJSON, err := json.Marshal(thumbnails)
	if err != nil {
		return fmt.Errorf("marshal thumbnailUrls: %w", err)
	}

	err = s.update(ctx, gameID,
		"SET #s = :s, #r = :r, #t = :t, #u = :u",
		map[string]string{"#s": attrStatus, "#r": attrRenditions, "#t": attrThumbnails},
		map[string]types.AttributeValue{
			":s": statusValue(video.StatusCompleted),
			":r": &types.AttributeValueMemberS{Value: string(renditionsJSON)},
			":t": &types.AttributeValueMemberS{Value: string(thumbnailsJSON)},
		})
	if err != nil {
		return fmt.Errorf("mark completed %s: %w", gameID, err)
	}
	return nil
}

func (s *DynamoStore) GetProcessingRecord(ctx context.Context, gameID string) (*ProcessingRecord, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			attrID: &types.AttributeValueMemberS{Value: gameID},
		},
		ProjectionExpression: aws.String("#id, #s, #j, #r, #t, #u"),
		ExpressionAttributeNames: map[string]string{
			"#id": attrID,
			"#s":  attrStatus,
			"#j":  attrJobID,
			"#r":  attrRenditions,
			"#t":  attrThumbnails,
			"#u":  attrUpdatedAt,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem id=%s: %w", gameID, err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item gameItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal game %s: %w", gameID, err)
	}
	return item.decode(gameID)
}

// decode expands the JSON-encoded URL fields. A malformed field is logged and
// left empty rather than failing the read.
func (item gameItem) decode(gameID string) (*ProcessingRecord, error) {
	rec := &ProcessingRecord{
		GameID:            gameID,
		Status:            video.Status(item.Status),
		MediaConvertJobID: item.MediaConvertJobID,
	}
	if item.ProcessedVideoURLs != "" {
		if err := json.Unmarshal([]byte(item.ProcessedVideoURLs), &rec.ProcessedVideoURLs); err != nil {
			log.Warn().Err(err).Str("gameId", gameID).Msg("Malformed processedVideoUrls, ignoring")
		}
	}
	if item.ThumbnailURLs != "" {
		if err := json.Unmarshal([]byte(item.ThumbnailURLs), &rec.ThumbnailURLs); err != nil {
			log.Warn().Err(err).Str("gameId", gameID).Msg("Malformed thumbnailUrls, ignoring")
		}
	}
	if item.UpdatedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse updatedAt %q for game %s: %w", item.UpdatedAt, gameID, err)
		}
		rec.UpdatedAt = t
	}
	return rec, nil
}
