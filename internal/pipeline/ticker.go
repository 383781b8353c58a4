package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/x"
)

// NewProgressTicker periodically logs a Progress counter's position,
// wiring gitlab.com/tozd/go/x's Ticker directly the way peer-db's
// cmd/prepare/embed.go and cmd/wikipedia/wikipedia.go report progress on
// their own worker pools. Size is unknown for a pipeline stage, so only
// elapsed time and count are logged, not a percentage or ETA.
func NewProgressTicker(ctx context.Context, counter *Progress, interval time.Duration, logger zerolog.Logger) *x.Ticker {
	ticker := x.NewTicker(ctx, counter, 0, interval)

	go func() {
		for progress := range ticker.C {
			logger.Info().
				Int64("count", progress.Count).
				Dur("elapsed", progress.Elapsed).
				Msg("ingest progress")
		}
	}()

	return ticker
}
