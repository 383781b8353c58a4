package ingest

import (
	"context"

	"gitlab.com/wikidex/wikidex/internal/document"
	"gitlab.com/wikidex/wikidex/internal/pipeline"
)

// newCompressStage gzip-compresses each document's text and packs its
// vector into the on-disk encoding the document store writes, per spec.md
// §4.1's Compressor stage.
func newCompressStage() pipeline.StageFunc[embeddedDocument, preparedRecord] {
	return pipeline.NewStageFunc("Compressor", func(_ context.Context, doc embeddedDocument) ([]preparedRecord, error) {
		compressed, errE := document.Compress(doc.Text)
		if errE != nil {
			return nil, errE
		}

		return []preparedRecord{{
			ArticleID:        doc.ArticleID,
			ArticleTitle:     doc.ArticleTitle,
			AccessDate:       doc.Date,
			ModificationDate: doc.Date,
			HeadingPath:      doc.HeadingPath,
			DocumentID:       doc.DocumentID,
			CompressedText:   compressed,
			Vector:           document.PackVector(doc.Vector),
		}}, nil
	})
}
