package transcode

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert/types"
)

func TestThumbnailPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"protected/processed-videos/g1/clip", "protected/processed-videos/g1/thumbnails/clip"},
		{"protected/processed-videos/clip", "protected/processed-videos/thumbnails/clip"},
		{"clip", "thumbnails/clip"},
	}
	for _, tt := range tests {
		if got := ThumbnailPrefix(tt.in); got != tt.want {
			t.Errorf("ThumbnailPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildJobSettings(t *testing.T) {
	s := BuildJobSettings("s3://b/in.mp4", "s3://b/out/clip", "s3://b/out/thumbnails/clip")

	if len(s.Inputs) != 1 || aws.ToString(s.Inputs[0].FileInput) != "s3://b/in.mp4" {
		t.Fatalf("unexpected inputs: %+v", s.Inputs)
	}
	if len(s.OutputGroups) != 2 {
		t.Fatalf("expected 2 output groups, got %d", len(s.OutputGroups))
	}

	videoGroup := s.OutputGroups[0]
	if got := aws.ToString(videoGroup.OutputGroupSettings.FileGroupSettings.Destination); got != "s3://b/out/clip" {
		t.Errorf("video destination = %q", got)
	}
	if len(videoGroup.Outputs) != 2 {
		t.Fatalf("expected exactly 2 renditions, got %d", len(videoGroup.Outputs))
	}

	renditions := []struct {
		modifier   string
		height     int32
		maxBitrate int32
	}{
		{"_1080p", 1080, 5_000_000},
		{"_720p", 720, 3_000_000},
	}
	for i, want := range renditions {
		out := videoGroup.Outputs[i]
		if aws.ToString(out.NameModifier) != want.modifier {
			t.Errorf("output %d NameModifier = %q, want %q", i, aws.ToString(out.NameModifier), want.modifier)
		}
		if aws.ToInt32(out.VideoDescription.Height) != want.height {
			t.Errorf("output %d Height = %d, want %d", i, aws.ToInt32(out.VideoDescription.Height), want.height)
		}
		h264 := out.VideoDescription.CodecSettings.H264Settings
		if h264.RateControlMode != types.H264RateControlModeQvbr {
			t.Errorf("output %d RateControlMode = %s, want QVBR", i, h264.RateControlMode)
		}
		if aws.ToInt32(h264.MaxBitrate) != want.maxBitrate {
			t.Errorf("output %d MaxBitrate = %d, want %d", i, aws.ToInt32(h264.MaxBitrate), want.maxBitrate)
		}
		if out.ContainerSettings.Container != types.ContainerTypeMp4 {
			t.Errorf("output %d container = %s", i, out.ContainerSettings.Container)
		}
	}
	if aws.ToInt32(videoGroup.Outputs[1].VideoDescription.CodecSettings.H264Settings.MaxBitrate) >=
		aws.ToInt32(videoGroup.Outputs[0].VideoDescription.CodecSettings.H264Settings.MaxBitrate) {
		t.Error("720p ceiling must be lower than 1080p")
	}

	thumbGroup := s.OutputGroups[1]
	if got := aws.ToString(thumbGroup.OutputGroupSettings.FileGroupSettings.Destination); got != "s3://b/out/thumbnails/clip" {
		t.Errorf("thumbnail destination = %q", got)
	}
	thumb := thumbGroup.Outputs[0]
	if aws.ToString(thumb.NameModifier) != "_thumb" {
		t.Errorf("thumbnail NameModifier = %q", aws.ToString(thumb.NameModifier))
	}
	fc := thumb.VideoDescription.CodecSettings.FrameCaptureSettings
	if thumb.VideoDescription.CodecSettings.Codec != types.VideoCodecFrameCapture || fc == nil {
		t.Fatal("thumbnail output must use frame capture")
	}
	if aws.ToInt32(fc.FramerateNumerator) != 1 || aws.ToInt32(fc.FramerateDenominator) != 10 {
		t.Errorf("capture interval = %d/%d", aws.ToInt32(fc.FramerateNumerator), aws.ToInt32(fc.FramerateDenominator))
	}
	if aws.ToInt32(fc.MaxCaptures) != 10 {
		t.Errorf("MaxCaptures = %d, want 10", aws.ToInt32(fc.MaxCaptures))
	}
}
