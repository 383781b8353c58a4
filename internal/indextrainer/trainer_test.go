package indextrainer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomVectors(n, d int) [][]float32 {
	vectors := make([][]float32, n)
	for i := range vectors {
		v := make([]float32, d)
		for j := range v {
			v[j] = float32((i*31 + j*17) % 97)
		}
		vectors[i] = v
	}
	return vectors
}

func TestTrainAndSearchOrdersByDistance(t *testing.T) {
	t.Parallel()

	ids := []int64{1, 2, 3, 4, 5}
	vectors := randomVectors(5, 16)

	idx, errE := Train(ids, vectors, 4)
	require.NoError(t, errE)
	assert.Equal(t, 4, idx.OutputDim)

	neighbors := idx.Search(vectors[2], 3)
	require.Len(t, neighbors, 3)
	assert.Equal(t, int64(3), neighbors[0])
}

func TestTrainAndPersistIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "index.bin")

	ids := []int64{1, 2, 3}
	vectors := randomVectors(3, 8)

	trained, errE := TrainAndPersist(ids, vectors, 4, path)
	require.NoError(t, errE)
	assert.True(t, trained)

	trained, errE = TrainAndPersist(ids, vectors, 4, path)
	require.NoError(t, errE)
	assert.False(t, trained)
}
