package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/courtside/game-video/internal/video"
)

type fakeDynamo struct {
	updates   []*dynamodb.UpdateItemInput
	gets      []*dynamodb.GetItemInput
	updateErr error
	item      map[string]types.AttributeValue
	getErr    error
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, params)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.gets = append(f.gets, params)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &dynamodb.GetItemOutput{Item: f.item}, nil
}

var fixedNow = time.Date(2026, 3, 14, 18, 30, 5, 123000000, time.UTC)

func newTestStore(f *fakeDynamo) *DynamoStore {
	s := NewDynamoStore(f, "Game-test")
	s.now = func() time.Time { return fixedNow }
	return s
}

func strValue(t *testing.T, m map[string]types.AttributeValue, key string) string {
	t.Helper()
	v, ok := m[key].(*types.AttributeValueMemberS)
	if !ok {
		t.Fatalf("value %s missing or not a string: %#v", key, m[key])
	}
	return v.Value
}

// checkUpdate verifies the fields common to every write.
func checkUpdate(t *testing.T, in *dynamodb.UpdateItemInput, gameID string) {
	t.Helper()
	if aws.ToString(in.TableName) != "Game-test" {
		t.Errorf("TableName = %q, want Game-test", aws.ToString(in.TableName))
	}
	if got := strValue(t, in.Key, "id"); got != gameID {
		t.Errorf("Key id = %q, want %q", got, gameID)
	}
	if aws.ToString(in.ConditionExpression) != "attribute_exists(#id)" {
		t.Errorf("ConditionExpression = %q", aws.ToString(in.ConditionExpression))
	}
	if got := strValue(t, in.ExpressionAttributeValues, ":u"); got != "2026-03-14T18:30:05.123Z" {
		t.Errorf("updatedAt = %q, want 2026-03-14T18:30:05.123Z", got)
	}
	// DynamoDB rejects unused expression attribute names.
	exprs := aws.ToString(in.UpdateExpression) + " " + aws.ToString(in.ConditionExpression)
	for name := range in.ExpressionAttributeNames {
		if !strings.Contains(exprs, name) {
			t.Errorf("attribute name %s is not referenced by %q", name, exprs)
		}
	}
	for name := range in.ExpressionAttributeValues {
		if !strings.Contains(exprs, name) {
			t.Errorf("attribute value %s is not referenced by %q", name, exprs)
		}
	}
}

func TestMarkProcessing(t *testing.T) {
	f := &fakeDynamo{}
	s := newTestStore(f)

	if err := s.MarkProcessing(context.Background(), "g1", "job-42"); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	if len(f.updates) != 1 {
		t.Fatalf("expected 1 UpdateItem, got %d", len(f.updates))
	}
	in := f.updates[0]
	checkUpdate(t, in, "g1")
	if got := strValue(t, in.ExpressionAttributeValues, ":s"); got != "PROCESSING" {
		t.Errorf("status = %q, want PROCESSING", got)
	}
	if got := strValue(t, in.ExpressionAttributeValues, ":j"); got != "job-42" {
		t.Errorf("job id = %q, want job-42", got)
	}
	if in.ExpressionAttributeNames["#j"] != "mediaConvertJobId" {
		t.Errorf("#j = %q", in.ExpressionAttributeNames["#j"])
	}
}

func TestMarkSubmitFailed_RemovesJobID(t *testing.T) {
	f := &fakeDynamo{}
	s := newTestStore(f)

	if err := s.MarkSubmitFailed(context.Background(), "g1"); err != nil {
		t.Fatalf("MarkSubmitFailed: %v", err)
	}
	in := f.updates[0]
	checkUpdate(t, in, "g1")
	if got := strValue(t, in.ExpressionAttributeValues, ":s"); got != "FAILED" {
		t.Errorf("status = %q, want FAILED", got)
	}
	if !strings.Contains(aws.ToString(in.UpdateExpression), "REMOVE #j") {
		t.Errorf("UpdateExpression %q should remove the job id", aws.ToString(in.UpdateExpression))
	}
}

func TestMarkJobFailed_LeavesURLsAlone(t *testing.T) {
	f := &fakeDynamo{}
	s := newTestStore(f)

	if err := s.MarkJobFailed(context.Background(), "g1"); err != nil {
		t.Fatalf("MarkJobFailed: %v", err)
	}
	in := f.updates[0]
	checkUpdate(t, in, "g1")
	expr := aws.ToString(in.UpdateExpression)
	if expr != "SET #s = :s, #u = :u" {
		t.Errorf("UpdateExpression = %q", expr)
	}
	for _, name := range in.ExpressionAttributeNames {
		if name == "processedVideoUrls" || name == "thumbnailUrls" || name == "mediaConvertJobId" {
			t.Errorf("job failure must not touch %s", name)
		}
	}
}

func TestMarkCompleted_SingleWrite(t *testing.T) {
	f := &fakeDynamo{}
	s := newTestStore(f)

	renditions := map[string]string{"1080p": "https://s3.amazonaws.com/b/clip_1080p.mp4", "720p": "https://s3.amazonaws.com/b/clip_720p.mp4"}
	thumbs := []string{"https://s3.amazonaws.com/b/thumbnails/clip_thumb.0.jpg"}
	if err := s.MarkCompleted(context.Background(), "g1", renditions, thumbs); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if len(f.updates) != 1 {
		t.Fatalf("expected exactly 1 UpdateItem, got %d", len(f.updates))
	}
	in := f.updates[0]
	checkUpdate(t, in, "g1")
	if got := strValue(t, in.ExpressionAttributeValues, ":s"); got != "COMPLETED" {
		t.Errorf("status = %q, want COMPLETED", got)
	}
	wantR := `{"1080p":"https://s3.amazonaws.com/b/clip_1080p.mp4","720p":"https://s3.amazonaws.com/b/clip_720p.mp4"}`
	if got := strValue(t, in.ExpressionAttributeValues, ":r"); got != wantR {
		t.Errorf("processedVideoUrls = %s, want %s", got, wantR)
	}
	wantT := `["https://s3.amazonaws.com/b/thumbnails/clip_thumb.0.jpg"]`
	if got := strValue(t, in.ExpressionAttributeValues, ":t"); got != wantT {
		t.Errorf("thumbnailUrls = %s, want %s", got, wantT)
	}
}

func TestMarkCompleted_EmptyThumbnails(t *testing.T) {
	f := &fakeDynamo{}
	s := newTestStore(f)

	if err := s.MarkCompleted(context.Background(), "g1", nil, nil); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	in := f.updates[0]
	if got := strValue(t, in.ExpressionAttributeValues, ":r"); got != "{}" {
		t.Errorf("processedVideoUrls = %s, want {}", got)
	}
	if got := strValue(t, in.ExpressionAttributeValues, ":t"); got != "[]" {
		t.Errorf("thumbnailUrls = %s, want []", got)
	}
}

func TestUpdate_GameNotFound(t *testing.T) {
	f := &fakeDynamo{updateErr: &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}}
	s := newTestStore(f)

	err := s.MarkProcessing(context.Background(), "missing", "job-1")
	if !errors.Is(err, ErrGameNotFound) {
		t.Errorf("expected ErrGameNotFound, got %v", err)
	}
}

func TestUpdate_ClientError(t *testing.T) {
	boom := errors.New("throttled")
	f := &fakeDynamo{updateErr: boom}
	s := newTestStore(f)

	err := s.MarkJobFailed(context.Background(), "g1")
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped client error, got %v", err)
	}
	if errors.Is(err, ErrGameNotFound) {
		t.Error("client error must not be reported as not found")
	}
}

func TestGetProcessingRecord(t *testing.T) {
	f := &fakeDynamo{item: map[string]types.AttributeValue{
		"id":                    &types.AttributeValueMemberS{Value: "g1"},
		"videoProcessingStatus": &types.AttributeValueMemberS{Value: "COMPLETED"},
		"mediaConvertJobId":     &types.AttributeValueMemberS{Value: "job-42"},
		"processedVideoUrls":    &types.AttributeValueMemberS{Value: `{"1080p":"https://s3.amazonaws.com/b/clip_1080p.mp4"}`},
		"thumbnailUrls":         &types.AttributeValueMemberS{Value: `["https://s3.amazonaws.com/b/thumbnails/clip_thumb.0.jpg"]`},
		"updatedAt":             &types.AttributeValueMemberS{Value: "2026-03-14T18:30:05.123Z"},
	}}
	s := newTestStore(f)

	rec, err := s.GetProcessingRecord(context.Background(), "g1")
	if err != nil {
		t.Fatalf("GetProcessingRecord: %v", err)
	}
	if rec.GameID != "g1" || rec.Status != video.StatusCompleted || rec.MediaConvertJobID != "job-42" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.ProcessedVideoURLs["1080p"] != "https://s3.amazonaws.com/b/clip_1080p.mp4" {
		t.Errorf("ProcessedVideoURLs = %v", rec.ProcessedVideoURLs)
	}
	if len(rec.ThumbnailURLs) != 1 {
		t.Errorf("ThumbnailURLs = %v", rec.ThumbnailURLs)
	}
	if !rec.UpdatedAt.Equal(fixedNow) {
		t.Errorf("UpdatedAt = %v, want %v", rec.UpdatedAt, fixedNow)
	}
}

func TestGetProcessingRecord_NotFound(t *testing.T) {
	s := newTestStore(&fakeDynamo{})

	rec, err := s.GetProcessingRecord(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetProcessingRecord: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record, got %+v", rec)
	}
}

func TestGetProcessingRecord_UnsetStatus(t *testing.T) {
	f := &fakeDynamo{item: map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: "g2"},
	}}
	s := newTestStore(f)

	rec, err := s.GetProcessingRecord(context.Background(), "g2")
	if err != nil {
		t.Fatalf("GetProcessingRecord: %v", err)
	}
	if rec.Status != video.StatusUnset {
		t.Errorf("Status = %q, want unset", rec.Status)
	}
	if rec.ProcessedVideoURLs != nil || rec.ThumbnailURLs != nil {
		t.Errorf("URL fields should be empty: %+v", rec)
	}
}

func TestGetProcessingRecord_MalformedJSON(t *testing.T) {
	f := &fakeDynamo{item: map[string]types.AttributeValue{
		"id":                    &types.AttributeValueMemberS{Value: "g3"},
		"videoProcessingStatus": &types.AttributeValueMemberS{Value: "COMPLETED"},
		"processedVideoUrls":    &types.AttributeValueMemberS{Value: `{not json`},
	}}
	s := newTestStore(f)

	rec, err := s.GetProcessingRecord(context.Background(), "g3")
	if err != nil {
		t.Fatalf("GetProcessingRecord: %v", err)
	}
	if len(rec.ProcessedVideoURLs) != 0 {
		t.Errorf("expected malformed field to be dropped, got %v", rec.ProcessedVideoURLs)
	}
}
