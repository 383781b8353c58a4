// Package docstore implements the three-tier read path spec.md §4.5
// describes for serving Documents by ID: an in-process LRU, a shared Redis
// cache, and finally the relational backend (Postgres or SQLite), with
// cache misses backfilled asynchronously on the way back out.
package docstore

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"gitlab.com/wikidex/wikidex/internal/document"
)

// Store is the document store facade the retrieval engine calls into. The
// Redis tier is optional: a Store built without one falls through straight
// to the backend on every in-process miss.
type Store struct {
	backend Backend
	mem     *memCache
	redis   *redisCache
	logger  zerolog.Logger
}

// Config bundles what New needs beyond the already-constructed Backend.
// RedisClient is nil when no shared cache is configured.
type Config struct {
	MemCacheSize int
	RedisClient  *redis.Client
	Logger       zerolog.Logger
}

func New(backend Backend, cfg Config) (*Store, errors.E) {
	size := cfg.MemCacheSize
	if size <= 0 {
		size = 100_000
	}
	mem, err := newMemCache(size)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	s := &Store{backend: backend, mem: mem, logger: cfg.Logger}
	if cfg.RedisClient != nil {
		s.redis = newRedisCache(cfg.RedisClient, cfg.Logger)
	}
	return s, nil
}

// Retrieve fetches Documents by ID, preferring the in-process cache, then
// the shared cache, then the backend, backfilling both caches on misses
// from the backend without blocking the caller.
func (s *Store) Retrieve(ctx context.Context, ids []int64) ([]document.Document, errors.E) {
	if len(ids) == 0 {
		return nil, nil
	}

	var docs []document.Document
	var memMisses []int64
	for _, id := range ids {
		if doc, ok := s.mem.Get(id); ok {
			docs = append(docs, doc)
			continue
		}
		memMisses = append(memMisses, id)
	}
	if len(memMisses) == 0 {
		return docs, nil
	}

	var redisMisses []int64
	if s.redis != nil {
		hits, misses, errE := s.redis.MGet(ctx, memMisses)
		if errE != nil {
			s.logger.Warn().Err(errE).Msg("redis cache unavailable, falling through to backend")
			redisMisses = memMisses
		} else {
			for _, doc := range hits {
				s.mem.Add(doc)
			}
			docs = append(docs, hits...)
			redisMisses = misses
		}
	} else {
		redisMisses = memMisses
	}
	if len(redisMisses) == 0 {
		return docs, nil
	}

	fromDB, errE := s.backend.RetrieveFromDB(ctx, redisMisses)
	if errE != nil {
		return nil, errE
	}
	for _, doc := range fromDB {
		s.mem.Add(doc)
	}
	if s.redis != nil && len(fromDB) > 0 {
		s.redis.SetAsync(fromDB)
	}
	docs = append(docs, fromDB...)
	return docs, nil
}

// CompletedOn reports the ingest run's resumability marker.
func (s *Store) CompletedOn(ctx context.Context) (int64, bool, errors.E) {
	return s.backend.CompletedOn(ctx)
}

func (s *Store) Close() {
	s.backend.Close()
}
