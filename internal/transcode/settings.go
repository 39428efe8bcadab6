package transcode

import (
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert/types"

	"github.com/courtside/game-video/internal/video"
)

// Rendition ceilings. Both renditions use QVBR so simple footage stays well
// under the cap.
const (
	maxBitrate1080p = 5_000_000
	maxBitrate720p  = 3_000_000
	qvbrQuality     = 7

	audioBitrate    = 96_000
	audioSampleRate = 48_000
)

// Frame capture: one JPEG every thumbnailIntervalSec seconds, at most
// maxThumbnails per job.
const (
	thumbnailIntervalSec = 10
	maxThumbnails        = 10
	thumbnailQuality     = 80
	thumbnailWidth       = 640
	thumbnailHeight      = 360
)

// Output group names.
const (
	groupVideo      = "File Group"
	groupThumbnails = "Thumbnails"
)

// S3URI joins a bucket and key into an s3:// URI.
func S3URI(bucket, key string) string {
	return video.StorageScheme + bucket + "/" + key
}

// ThumbnailPrefix places frame captures in a thumbnails directory next to the
// renditions: protected/processed-videos/g1/clip -> protected/processed-videos/g1/thumbnails/clip
func ThumbnailPrefix(outputPrefix string) string {
	dir, base := path.Split(outputPrefix)
	return dir + video.ThumbnailsDir + base
}

// BuildJobSettings returns a job with two MP4 renditions (1080p, 720p) and a
// frame-capture thumbnail output. inputURI is the raw upload; outputURI is the
// s3:// destination prefix without extension.
func BuildJobSettings(inputURI, outputURI, thumbnailURI string) *types.JobSettings {
	return &types.JobSettings{
		TimecodeConfig: &types.TimecodeConfig{Source: types.TimecodeSourceZerobased},
		Inputs: []types.Input{
			{
				FileInput:      aws.String(inputURI),
				TimecodeSource: types.InputTimecodeSourceZerobased,
				VideoSelector:  &types.VideoSelector{},
				AudioSelectors: map[string]types.AudioSelector{
					"Audio Selector 1": {DefaultSelection: types.AudioDefaultSelectionDefault},
				},
			},
		},
		OutputGroups: []types.OutputGroup{
			{
				Name: aws.String(groupVideo),
				OutputGroupSettings: &types.OutputGroupSettings{
					Type: types.OutputGroupTypeFileGroupSettings,
					FileGroupSettings: &types.FileGroupSettings{
						Destination: aws.String(outputURI),
					},
				},
				Outputs: []types.Output{
					mp4Output(video.NameModifier1080p, 1920, 1080, maxBitrate1080p),
					mp4Output(video.NameModifier720p, 1280, 720, maxBitrate720p),
				},
			},
			{
				Name: aws.String(groupThumbnails),
				OutputGroupSettings: &types.OutputGroupSettings{
					Type: types.OutputGroupTypeFileGroupSettings,
					FileGroupSettings: &types.FileGroupSettings{
						Destination: aws.String(thumbnailURI),
					},
				},
				Outputs: []types.Output{thumbnailOutput()},
			},
		},
	}
}

func mp4Output(nameModifier string, width, height, maxBitrate int32) types.Output {
	return types.Output{
		NameModifier: aws.String(nameModifier),
		ContainerSettings: &types.ContainerSettings{
			Container:   types.ContainerTypeMp4,
			Mp4Settings: &types.Mp4Settings{},
		},
		VideoDescription: &types.VideoDescription{
			Width:  aws.Int32(width),
			Height: aws.Int32(height),
			CodecSettings: &types.VideoCodecSettings{
				Codec: types.VideoCodecH264,
				H264Settings: &types.H264Settings{
					RateControlMode:   types.H264RateControlModeQvbr,
					MaxBitrate:        aws.Int32(maxBitrate),
					SceneChangeDetect: types.H264SceneChangeDetectTransitionDetection,
					QvbrSettings: &types.H264QvbrSettings{
						QvbrQualityLevel: aws.Int32(qvbrQuality),
					},
				},
			},
		},
		AudioDescriptions: []types.AudioDescription{
			{
				CodecSettings: &types.AudioCodecSettings{
					Codec: types.AudioCodecAac,
					AacSettings: &types.AacSettings{
						Bitrate:    aws.Int32(audioBitrate),
						CodingMode: types.AacCodingModeCodingMode20,
						SampleRate: aws.Int32(audioSampleRate),
					},
				},
			},
		},
	}
}

func thumbnailOutput() types.Output {
	return types.Output{
		NameModifier: aws.String(video.NameModifierThumbnail),
		Extension:    aws.String("jpg"),
		ContainerSettings: &types.ContainerSettings{
			Container: types.ContainerTypeRaw,
		},
		VideoDescription: &types.VideoDescription{
			Width:  aws.Int32(thumbnailWidth),
			Height: aws.Int32(thumbnailHeight),
			CodecSettings: &types.VideoCodecSettings{
				Codec: types.VideoCodecFrameCapture,
				FrameCaptureSettings: &types.FrameCaptureSettings{
					FramerateNumerator:   aws.Int32(1),
					FramerateDenominator: aws.Int32(thumbnailIntervalSec),
					MaxCaptures:          aws.Int32(maxThumbnails),
					Quality:              aws.Int32(thumbnailQuality),
				},
			},
		},
	}
}
