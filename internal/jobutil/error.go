// Package jobutil provides shared helpers for transcode job lifecycle operations.
//
// RecordFailure unifies the failure-writing pattern of the submitter and the
// completion listener: log the failure with its job context, then persist a
// FAILED status through a caller-supplied writer.
package jobutil

import (
	"context"

	"github.com/rs/zerolog/log"
)

// FailureWriter persists a FAILED status for a game. Each caller provides the
// store method matching its failure kind (submission or job error).
type FailureWriter func(ctx context.Context, gameID string) error

// RecordFailure logs the failure and delegates persistence to write.
func RecordFailure(ctx context.Context, gameID, jobID, reason string, write FailureWriter) error {
	log.Error().
		Str("job", jobID).
		Str("gameId", gameID).
		Str("error", reason).
		Msg("Transcode job failed")
	return write(ctx, gameID)
}
