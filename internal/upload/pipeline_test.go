package upload_test

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert/types"

	"github.com/courtside/game-video/internal/completion"
	"github.com/courtside/game-video/internal/store"
	"github.com/courtside/game-video/internal/store/storetest"
	"github.com/courtside/game-video/internal/transcode"
	"github.com/courtside/game-video/internal/upload"
	"github.com/courtside/game-video/internal/video"
)

type stubMediaConvert struct {
	last *mediaconvert.CreateJobInput
}

func (s *stubMediaConvert) CreateJob(ctx context.Context, params *mediaconvert.CreateJobInput, optFns ...func(*mediaconvert.Options)) (*mediaconvert.CreateJobOutput, error) {
	s.last = params
	return &mediaconvert.CreateJobOutput{Job: &types.Job{Id: aws.String("job-42")}}, nil
}

// TestUploadToCompletion walks one upload through submission and the
// asynchronous completion event, checking the Game record after each step.
func TestUploadToCompletion(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewMemory()
	st.Seed(store.ProcessingRecord{GameID: "g1"})

	mc := &stubMediaConvert{}
	submitter := transcode.NewSubmitter(mc, st, transcode.Config{Bucket: "bucket", RoleARN: "arn:aws:iam::1:role/mc"})
	trigger := upload.NewTrigger(submitter, nil)
	listener := completion.NewListener(st)

	var s3evt events.S3Event
	s3evt.Records = make([]events.S3EventRecord, 1)
	s3evt.Records[0].S3.Bucket.Name = "bucket"
	s3evt.Records[0].S3.Object.Key = "protected/game-videos/g1/clip.mp4"
	if err := trigger.HandleS3Event(ctx, s3evt); err != nil {
		t.Fatalf("HandleS3Event: %v", err)
	}

	rec := st.Record("g1")
	if rec.Status != video.StatusProcessing || rec.MediaConvertJobID != "job-42" {
		t.Fatalf("after submit: %+v, want PROCESSING/job-42", rec)
	}
	if got := aws.ToString(mc.last.Settings.OutputGroups[0].OutputGroupSettings.FileGroupSettings.Destination); got != "s3://bucket/protected/processed-videos/g1/clip" {
		t.Errorf("video destination = %q", got)
	}

	detail, _ := json.Marshal(video.JobStateChange{
		Status:       "COMPLETE",
		JobID:        "job-42",
		UserMetadata: mc.last.UserMetadata,
		OutputGroupDetails: []video.OutputGroupDetail{
			{OutputDetails: []video.OutputDetail{{OutputFilePaths: []string{"s3://bucket/protected/processed-videos/g1/clip_1080p.mp4"}}}},
			{OutputDetails: []video.OutputDetail{{OutputFilePaths: []string{"s3://bucket/protected/processed-videos/g1/thumbnails/clip_thumb_001.jpg"}}}},
		},
	})
	if err := listener.Handle(ctx, events.CloudWatchEvent{Detail: detail}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	rec = st.Record("g1")
	if rec.Status != video.StatusCompleted {
		t.Errorf("Status = %q, want COMPLETED", rec.Status)
	}
	wantR := map[string]string{"1080p": "https://s3.amazonaws.com/bucket/protected/processed-videos/g1/clip_1080p.mp4"}
	if !reflect.DeepEqual(rec.ProcessedVideoURLs, wantR) {
		t.Errorf("ProcessedVideoURLs = %v, want %v", rec.ProcessedVideoURLs, wantR)
	}
	wantT := []string{"https://s3.amazonaws.com/bucket/protected/processed-videos/g1/thumbnails/clip_thumb_001.jpg"}
	if !reflect.DeepEqual(rec.ThumbnailURLs, wantT) {
		t.Errorf("ThumbnailURLs = %v, want %v", rec.ThumbnailURLs, wantT)
	}
}
