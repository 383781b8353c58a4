package ingest

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"gitlab.com/wikidex/wikidex/internal/docstore"
	"gitlab.com/wikidex/wikidex/internal/embedclient"
	"gitlab.com/wikidex/wikidex/internal/indextrainer"
	"gitlab.com/wikidex/wikidex/internal/pipeline"
)

// tickerInterval is how often progress is logged, matching the period
// peer-db's cmd/prepare/embed.go logs at.
const tickerInterval = 30 * time.Second

// Options configures one ingest run.
type Options struct {
	WikiXMLPath    string
	IngestLimit    int
	EmbedBatch     int
	WriteBatch     int
	IndexPath      string
	IndexOutputDim int
	ChunkSplitOptions
}

// Run drives one full ingest pass: dump -> normalized sections -> chunks ->
// embeddings -> compressed records -> batched writes, then marks
// completion. If the backend already has a completed_on marker, Run
// performs zero writes, per spec.md §8 scenario 5's resumability contract.
func Run(ctx context.Context, backend docstore.Backend, embedder *embedclient.Client, opts Options, logger zerolog.Logger) errors.E {
	if _, ok, errE := backend.CompletedOn(ctx); errE != nil {
		return errE
	} else if ok {
		logger.Info().Msg("ingest already completed for this output directory, skipping")
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)

	articleIDs := &pipeline.IDCounter{}
	documentIDs := &pipeline.IDCounter{}

	articles := readArticles(g, ctx, logger, opts.WikiXMLPath, opts.IngestLimit, articleIDs)

	headingProgress := &pipeline.Progress{}
	sections := pipeline.Link(g, ctx, newHeadingSplitStage(), articles, headingProgress, nil, logger)

	chunkProgress := &pipeline.Progress{}
	chunks := pipeline.Link(g, ctx, newChunkSplitStage(opts.ChunkSplitOptions), sections, nil, chunkProgress, logger)

	embedBatchSize := opts.EmbedBatch
	if embedBatchSize <= 0 {
		embedBatchSize = 96
	}
	chunkBatches := pipeline.Batch(chunks, embedBatchSize)

	embedProgress := &pipeline.Progress{}
	embedded := pipeline.Link(g, ctx, newEmbedStage(embedder, documentIDs), chunkBatches, nil, embedProgress, logger)

	forCompression, forIndex := pipeline.Junction(embedded)

	acc := &vectorAccumulator{}
	indexed := pipeline.Link(g, ctx, newVectorAccumulatorStage(acc), forIndex, nil, nil, logger)

	compressed := pipeline.Link(g, ctx, newCompressStage(), forCompression, nil, nil, logger)

	writeBatchSize := opts.WriteBatch
	if writeBatchSize <= 0 {
		writeBatchSize = 10_000
	}
	recordBatches := pipeline.Batch(compressed, writeBatchSize)

	writer := newWriterStage(backend)
	ticker := pipeline.NewProgressTicker(ctx, embedProgress, tickerInterval, logger)
	defer ticker.Stop()

	written := pipeline.Link(g, ctx, writer, recordBatches, nil, nil, logger)

	// Both branches of the Junction must be fully drained before the
	// accumulated vectors are safe to read, so both drains run inside the
	// same errgroup as every other stage rather than a separate
	// sync.WaitGroup: one real failure anywhere in the pipeline cancels
	// ctx and g.Wait reports it, instead of Run silently returning success
	// once the channels happen to drain.
	g.Go(func() error {
		for range written {
		}
		return nil
	})
	g.Go(func() error {
		for range indexed {
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return errors.WithStack(err)
	}

	if len(acc.ids) > 0 && opts.IndexPath != "" {
		outputDim := opts.IndexOutputDim
		if outputDim <= 0 {
			outputDim = 128
		}
		if _, errE := indextrainer.TrainAndPersist(acc.ids, acc.vectors, outputDim, opts.IndexPath); errE != nil {
			return errE
		}
	}

	return backend.WriteCompletedOn(ctx, time.Now(), writer.ArticleCount())
}
