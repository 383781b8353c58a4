package ingest

import (
	"context"
	"sync"

	"gitlab.com/wikidex/wikidex/internal/pipeline"
)

// vectorAccumulator collects every embedded document's (id, vector) pair in
// memory for the final index-training step. pipeline.Link may deliver
// items from a single goroutine, but the accumulator guards its slice with
// a mutex anyway since it is also read from the orchestrator goroutine
// once the pipeline drains.
type vectorAccumulator struct {
	mu      sync.Mutex
	ids     []int64
	vectors [][]float32
}

func newVectorAccumulatorStage(acc *vectorAccumulator) pipeline.StageFunc[embeddedDocument, struct{}] {
	return pipeline.NewStageFunc("IndexAccumulator", func(_ context.Context, doc embeddedDocument) ([]struct{}, error) {
		acc.mu.Lock()
		acc.ids = append(acc.ids, doc.DocumentID)
		acc.vectors = append(acc.vectors, doc.Vector)
		acc.mu.Unlock()
		return nil, nil
	})
}
