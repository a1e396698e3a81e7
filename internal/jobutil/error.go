// Package jobutil provides shared helpers for Lambda job lifecycle operations.
package jobutil

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrorWriter persists a job failure to the backing store.
type ErrorWriter func(ctx context.Context, reason string) error

// SetJobError logs the failure on logger, persists reason through write and
// returns the message reported to the caller. A persistence failure is
// logged but does not change the returned message.
func SetJobError(ctx context.Context, logger zerolog.Logger, reason string, err error, write ErrorWriter) string {
	logger.Error().Err(err).Str("reason", reason).Msg("Job failed")
	if werr := write(ctx, reason); werr != nil {
		logger.Warn().Err(werr).Msg("Failed to persist job error")
	}
	if err == nil {
		return reason
	}
	return fmt.Sprintf("%s: %v", reason, err)
}
