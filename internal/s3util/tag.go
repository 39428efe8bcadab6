// Package s3util holds small S3 helpers shared by the pipeline Lambdas.
package s3util

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Cost-allocation tag applied to raw uploads the pipeline accepts.
const (
	ProjectTagKey   = "Project"
	ProjectTagValue = "courtside-video"
)

// TaggingAPI is the subset of the S3 client needed to tag objects.
type TaggingAPI interface {
	PutObjectTagging(ctx context.Context, params *s3.PutObjectTaggingInput, optFns ...func(*s3.Options)) (*s3.PutObjectTaggingOutput, error)
}

// Tagger applies the project tag to uploaded objects. Browser uploads go
// through presigned URLs that cannot carry tags, so they are tagged on first
// sight instead.
type Tagger struct {
	client TaggingAPI
}

// NewTagger creates a Tagger.
func NewTagger(client TaggingAPI) *Tagger {
	return &Tagger{client: client}
}

// TagObject replaces the object's tag set with the project tag.
func (t *Tagger) TagObject(ctx context.Context, bucket, key string) error {
	_, err := t.client.PutObjectTagging(ctx, &s3.PutObjectTaggingInput{
		Bucket: &bucket,
		Key:    &key,
		Tagging: &s3types.Tagging{
			TagSet: []s3types.Tag{
				{Key: aws.String(ProjectTagKey), Value: aws.String(ProjectTagValue)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("PutObjectTagging s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}
