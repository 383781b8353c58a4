// Command ingest runs the offline ingestion pipeline: it reads a MediaWiki
// XML dump and writes a document store and a trained vector index into an
// output directory, per spec.md §6's fixed CLI surface.
package main

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/alecthomas/kong"
	"gitlab.com/tozd/go/cli"
	"gitlab.com/tozd/go/errors"

	"gitlab.com/wikidex/wikidex/internal/config"
	"gitlab.com/wikidex/wikidex/internal/docstore"
	"gitlab.com/wikidex/wikidex/internal/embedclient"
	"gitlab.com/wikidex/wikidex/internal/ingest"
)

func main() {
	var cfg config.IngestConfig
	cli.Run(&cfg, kong.Vars{
		"defaultIngestLimit": strconv.Itoa(config.DefaultIngestLimit),
	}, func(_ *kong.Context) errors.E {
		return run(&cfg)
	})
}

func run(cfg *config.IngestConfig) errors.E {
	logger := cfg.Logger
	ctx := context.Background()

	backend, errE := docstore.NewSQLiteBackend(ctx, filepath.Join(cfg.OutputDirectory, "docstore.db"))
	if errE != nil {
		return errE
	}
	defer backend.Close()

	embedder := embedclient.New(cfg.EmbedURL, "", cfg.EmbedModel)

	opts := ingest.Options{
		WikiXMLPath:    cfg.WikiXML,
		IngestLimit:    cfg.IngestLimit,
		IndexPath:      filepath.Join(cfg.OutputDirectory, "index.gob"),
		IndexOutputDim: config.DefaultPCADimension,
		ChunkSplitOptions: ingest.ChunkSplitOptions{
			ChunkSize:    config.DefaultChunkSize,
			ChunkOverlap: config.DefaultChunkOverlap,
			MinWords:     config.DefaultMinChunkWords,
		},
	}

	return ingest.Run(ctx, backend, embedder, opts, logger)
}
