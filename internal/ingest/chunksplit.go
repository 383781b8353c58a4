package ingest

import (
	"context"

	"gitlab.com/wikidex/wikidex/internal/pipeline"
	"gitlab.com/wikidex/wikidex/internal/splitter"
)

// ChunkSplitOptions configures the length-based chunking stage.
type ChunkSplitOptions struct {
	ChunkSize    int
	ChunkOverlap int
	MinWords     int
}

// newChunkSplitStage breaks one section's text into length-bounded chunks,
// dropping chunks shorter than MinWords words itself rather than leaving
// that filter to the splitter, per spec.md §4.2.
func newChunkSplitStage(opts ChunkSplitOptions) pipeline.StageFunc[splitDocument, chunkedDocument] {
	return pipeline.NewStageFunc("ChunkSplitter", func(_ context.Context, doc splitDocument) ([]chunkedDocument, error) {
		chunks := splitter.Split(doc.Text, splitter.Options{
			ChunkSize:    opts.ChunkSize,
			ChunkOverlap: opts.ChunkOverlap,
		})

		out := make([]chunkedDocument, 0, len(chunks))
		for _, chunk := range chunks {
			if splitter.WordCount(chunk) < opts.MinWords {
				continue
			}
			out = append(out, chunkedDocument{
				ArticleID:    doc.ArticleID,
				ArticleTitle: doc.ArticleTitle,
				HeadingPath:  doc.HeadingPath,
				Text:         chunk,
				Date:         doc.Date,
			})
		}
		return out, nil
	})
}
