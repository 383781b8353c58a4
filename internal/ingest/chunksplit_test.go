package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkSplitDropsShortChunks(t *testing.T) {
	t.Parallel()

	stage := newChunkSplitStage(ChunkSplitOptions{ChunkSize: 2048, ChunkOverlap: 0, MinWords: 15})
	out, err := stage.Transform(context.Background(), splitDocument{ArticleID: 1, Text: "Too short."})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestChunkSplitKeepsLongChunksAndCarriesMetadata(t *testing.T) {
	t.Parallel()

	words := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		words = append(words, "word")
	}
	text := strings.Join(words, " ")

	stage := newChunkSplitStage(ChunkSplitOptions{ChunkSize: 2048, ChunkOverlap: 0, MinWords: 15})
	out, err := stage.Transform(context.Background(), splitDocument{
		ArticleID: 7, ArticleTitle: "Test", HeadingPath: []string{"Section"}, Text: text,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(7), out[0].ArticleID)
	assert.Equal(t, "Test", out[0].ArticleTitle)
	assert.Equal(t, []string{"Section"}, out[0].HeadingPath)
}
