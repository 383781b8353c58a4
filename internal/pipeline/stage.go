// Package pipeline provides the generic staged, back-pressured, typed
// channel machinery the ingestion pipeline is built from: a uniform
// transform/link contract, a generic linker, and specialized linkers
// (Batch, Junction) for the stages that need different fan shapes.
//
// Grounded on spec.md §4.7's PipelineStep contract and §9's channel-based
// staged pipeline design note. The progress-tracking side wires
// gitlab.com/tozd/go/x's Ticker/Counter directly, the same library
// peer-db's cmd/prepare/embed.go and cmd/wikipedia/wikipedia.go report
// progress through; Link runs each stage inside a golang.org/x/sync/errgroup
// group (rather than a bare goroutine) so a stage blocked on a cancelled
// downstream send reports that cancellation back through the group's
// Wait, the same error-propagation shape those two files use around
// their own worker pools.
package pipeline

import "context"

// Stage transforms one input item into zero or more output items. A stage
// that fails on an item returns an error for that item only; the pipeline
// logs it and continues with the next item.
type Stage[IN, OUT any] interface {
	Transform(ctx context.Context, in IN) ([]OUT, error)
	Name() string
}

// StageFunc adapts a plain function and a name into a Stage, the way most
// of the wired ingest stages are defined.
type StageFunc[IN, OUT any] struct {
	Fn   func(ctx context.Context, in IN) ([]OUT, error)
	name string
}

// NewStageFunc builds a StageFunc with the given name.
func NewStageFunc[IN, OUT any](name string, fn func(ctx context.Context, in IN) ([]OUT, error)) StageFunc[IN, OUT] {
	return StageFunc[IN, OUT]{Fn: fn, name: name}
}

func (s StageFunc[IN, OUT]) Transform(ctx context.Context, in IN) ([]OUT, error) {
	return s.Fn(ctx, in)
}

func (s StageFunc[IN, OUT]) Name() string {
	return s.name
}
