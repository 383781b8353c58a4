package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestLinkForwardsResultsAndTracksProgress(t *testing.T) {
	t.Parallel()

	double := NewStageFunc[int, int]("double", func(_ context.Context, in int) ([]int, error) {
		if in < 0 {
			return nil, errors.New("negative")
		}
		return []int{in, in}, nil
	})

	in := make(chan int, 3)
	in <- 1
	in <- -1
	in <- 2
	close(in)

	my := &Progress{}
	down := &Progress{}

	g, ctx := errgroup.WithContext(context.Background())
	out := Link[int, int](g, ctx, double, in, my, down, zerolog.Nop())

	var results []int
	for v := range out {
		results = append(results, v)
	}
	require.NoError(t, g.Wait())

	assert.ElementsMatch(t, []int{1, 1, 2, 2}, results)
	assert.EqualValues(t, 3, my.Count())
	assert.EqualValues(t, 4, down.Count())
}

func TestLinkReportsCancellationThroughGroup(t *testing.T) {
	t.Parallel()

	pass := NewStageFunc[int, int]("pass", func(_ context.Context, in int) ([]int, error) {
		return []int{in}, nil
	})

	in := make(chan int)
	go func() {
		in <- 1
		// Never closed: the stage blocks sending its only output onto
		// out, since nothing ever reads from out below.
	}()

	outerCtx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(outerCtx)
	_ = Link[int, int](g, ctx, pass, in, nil, nil, zerolog.Nop())

	cancel()
	err := g.Wait()
	require.Error(t, err)
}

func TestBatchEmitsPartialFinalBatch(t *testing.T) {
	t.Parallel()

	in := make(chan int, 5)
	for i := 0; i < 5; i++ {
		in <- i
	}
	close(in)

	var batches [][]int
	for b := range Batch(in, 2) {
		batches = append(batches, b)
	}

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 2)
	assert.Len(t, batches[2], 1)
}

func TestJunctionDuplicatesEveryItem(t *testing.T) {
	t.Parallel()

	in := make(chan int, 3)
	in <- 1
	in <- 2
	in <- 3
	close(in)

	a, b := Junction(in)

	var sumA, sumB int
	done := make(chan struct{})
	go func() {
		for v := range a {
			sumA += v
		}
		close(done)
	}()
	for v := range b {
		sumB += v
	}
	<-done

	assert.Equal(t, 6, sumA)
	assert.Equal(t, 6, sumB)
}

func TestIDCounterIsUnique(t *testing.T) {
	t.Parallel()

	var c IDCounter
	seen := map[int64]bool{}
	for i := 0; i < 100; i++ {
		id := c.Next()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
