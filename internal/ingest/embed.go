package ingest

import (
	"context"

	"gitlab.com/wikidex/wikidex/internal/embedclient"
	"gitlab.com/wikidex/wikidex/internal/pipeline"
)

// newEmbedStage embeds one batch of chunks in a single request, assigning
// each resulting document its globally unique document_id.
func newEmbedStage(client *embedclient.Client, documentIDs *pipeline.IDCounter) pipeline.StageFunc[[]chunkedDocument, embeddedDocument] {
	return pipeline.NewStageFunc("Embedder", func(ctx context.Context, batch []chunkedDocument) ([]embeddedDocument, error) {
		if len(batch) == 0 {
			return nil, nil
		}

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.Text
		}

		vectors, errE := client.EmbedBatch(ctx, texts)
		if errE != nil {
			return nil, errE
		}

		out := make([]embeddedDocument, len(batch))
		for i, doc := range batch {
			out[i] = embeddedDocument{
				chunkedDocument: doc,
				DocumentID:      documentIDs.Next(),
				Vector:          vectors[i],
			}
		}
		return out, nil
	})
}
