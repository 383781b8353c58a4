package ingest

import (
	"context"

	"gitlab.com/wikidex/wikidex/internal/docstore"
)

// writerStage persists batches of records, upserting each article at most
// once across the whole run (Link calls Transform sequentially within one
// goroutine, so the seen map needs no locking), per spec.md §4.1's Writer
// stage and the Backend.WriteBatch contract.
type writerStage struct {
	backend docstore.Backend
	seen    map[int64]bool
}

func newWriterStage(backend docstore.Backend) *writerStage {
	return &writerStage{backend: backend, seen: make(map[int64]bool)}
}

func (w *writerStage) Name() string {
	return "Writer"
}

func (w *writerStage) Transform(ctx context.Context, batch []preparedRecord) ([]struct{}, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	articles := make([]docstore.Article, 0)
	records := make([]docstore.WriteRecord, 0, len(batch))

	for _, r := range batch {
		if !w.seen[r.ArticleID] {
			w.seen[r.ArticleID] = true
			articles = append(articles, docstore.Article{
				ID:               r.ArticleID,
				Title:            r.ArticleTitle,
				AccessDate:       r.AccessDate,
				ModificationDate: r.ModificationDate,
			})
		}
		records = append(records, docstore.WriteRecord{
			DocumentID:     r.DocumentID,
			ArticleID:      r.ArticleID,
			HeadingPath:    r.HeadingPath,
			CompressedText: r.CompressedText,
			Vector:         r.Vector,
		})
	}

	if errE := w.backend.WriteBatch(ctx, articles, records); errE != nil {
		return nil, errE
	}
	return []struct{}{{}}, nil
}

// ArticleCount returns the number of distinct articles written so far.
func (w *writerStage) ArticleCount() int64 {
	return int64(len(w.seen))
}
