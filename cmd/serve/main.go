// Command serve runs the retrieval/inference HTTP API: it answers
// Conversations by embedding the last user turn, searching the trained
// vector index, fetching the matched Documents from the document store,
// and rendering them through an LLM, per spec.md §6's fixed CLI surface.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/redis/go-redis/v9"
	"gitlab.com/tozd/go/cli"
	"gitlab.com/tozd/go/errors"

	"gitlab.com/wikidex/wikidex/internal/config"
	"gitlab.com/wikidex/wikidex/internal/docstore"
	"gitlab.com/wikidex/wikidex/internal/embedclient"
	"gitlab.com/wikidex/wikidex/internal/engine"
	"gitlab.com/wikidex/wikidex/internal/indexclient"
	"gitlab.com/wikidex/wikidex/internal/llm"
	"gitlab.com/wikidex/wikidex/internal/server"
)

func main() {
	var cfg config.ServeConfig
	cli.Run(&cfg, kong.Vars{
		"defaultHost": config.DefaultHost,
		"defaultPort": strconv.Itoa(config.DefaultPort),
	}, func(_ *kong.Context) errors.E {
		return run(&cfg)
	})
}

func run(cfg *config.ServeConfig) errors.E {
	logger := cfg.Logger
	ctx := context.Background()

	backend, errE := newBackend(ctx, cfg.DocstoreURL)
	if errE != nil {
		return errE
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return errors.WithStack(err)
		}
		redisClient = redis.NewClient(opts)
	}

	store, errE := docstore.New(backend, docstore.Config{RedisClient: redisClient, Logger: logger})
	if errE != nil {
		return errE
	}
	defer store.Close()

	systemTemplate, err := os.ReadFile(cfg.SystemPromptPath)
	if err != nil {
		return errors.WithStack(err)
	}

	embedder := embedclient.New(cfg.EmbedURL, "", cfg.EmbedModel)
	index := indexclient.New(cfg.IndexURL, config.DefaultIndexDimension)
	facade := llm.New(cfg.LLMURL, "", cfg.LLMModel, llm.KindChat, "", "")

	eng := engine.New(embedder, index, store, facade, engine.Config{
		SystemTemplate:         string(systemTemplate),
		NumDocumentsToRetrieve: config.DefaultNumDocumentsToRetrieve,
		CitationIndexBegin:     1,
	})

	srv := server.New(eng, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logger.Info().Str("addr", addr).Msg("listening")

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Router(),
	}
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}
	return nil
}

func newBackend(ctx context.Context, url string) (docstore.Backend, errors.E) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return docstore.NewSQLiteBackend(ctx, strings.TrimPrefix(url, "sqlite://"))
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return docstore.NewPostgresBackend(ctx, url)
	default:
		return nil, errors.Errorf(`docstore URL %q has unrecognized scheme, expected "sqlite://" or "postgres://"`, url)
	}
}
