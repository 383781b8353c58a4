package pipeline

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Link is the generic linker: it registers one consumer goroutine on g
// that drains in, calls stage.Transform on each item, and forwards every
// result onto the returned channel. myProgress advances once per input
// item consumed; downstream advances once per output item produced.
// Either may be nil. The stage logs once at start and once at stop, and
// logs (without aborting the pipeline) any per-item transform error.
//
// Registering the worker on g rather than spawning a bare goroutine
// means a stage cancelled mid-send reports that failure back through
// g.Wait, the same error-propagation shape peer-db's cmd/prepare/embed.go
// and cmd/wikipedia/wikipedia.go use around their own errgroup-driven
// worker pools.
func Link[IN, OUT any](g *errgroup.Group, ctx context.Context, stage Stage[IN, OUT], in <-chan IN, myProgress, downstream *Progress, logger zerolog.Logger) <-chan OUT {
	out := make(chan OUT)
	log := logger.With().Str("stage", stage.Name()).Logger()

	g.Go(func() error {
		defer close(out)
		log.Debug().Msg("stage started")

		for item := range in {
			results, err := stage.Transform(ctx, item)
			if myProgress != nil {
				myProgress.Add(1)
			}
			if err != nil {
				log.Error().Err(err).Msg("stage item failed")
				continue
			}

			for _, r := range results {
				select {
				case out <- r:
					if downstream != nil {
						downstream.Add(1)
					}
				case <-ctx.Done():
					log.Debug().Msg("stage cancelled")
					return errors.WithStack(ctx.Err())
				}
			}
		}

		log.Debug().Msg("stage stopped")
		return nil
	})

	return out
}
