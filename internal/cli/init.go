// Package cli holds helpers shared by the videoctl operator commands.
package cli

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/zerolog/log"
)

// LoadAWSConfig loads the default AWS config, optionally pinned to a named
// profile and region. Exits fatally on failure.
func LoadAWSConfig(ctx context.Context, profile, region string) aws.Config {
	var opts []func(*awsconfig.LoadOptions) error
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		log.Fatal().Err(err).Str("profile", profile).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return cfg
}
