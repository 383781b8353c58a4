package docstore

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"gitlab.com/wikidex/wikidex/internal/document"
)

// redisCache is the shared read-through cache fronting the document store's
// database backend, keyed by document_id the way spec.md §4.5 describes.
//
// Grounded on custodia-labs-sercha-core's redis.SessionStore (go-redis/v9
// pipeline and Get/Set-with-TTL patterns), generalized from sessions to
// Documents and from single Get to batched MGET.
type redisCache struct {
	client *redis.Client
	logger zerolog.Logger
}

func newRedisCache(client *redis.Client, logger zerolog.Logger) *redisCache {
	return &redisCache{client: client, logger: logger}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("document:%d", id)
}

// MGet returns the subset of ids found in the cache, in no particular order,
// and the list of ids that were missing.
func (c *redisCache) MGet(ctx context.Context, ids []int64) ([]document.Document, []int64, errors.E) {
	if len(ids) == 0 {
		return nil, nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	var hits []document.Document
	var misses []int64
	for i, v := range values {
		if v == nil {
			misses = append(misses, ids[i])
			continue
		}
		s, ok := v.(string)
		if !ok {
			misses = append(misses, ids[i])
			continue
		}
		var doc document.Document
		if err := gob.NewDecoder(bytes.NewReader([]byte(s))).Decode(&doc); err != nil {
			misses = append(misses, ids[i])
			continue
		}
		hits = append(hits, doc)
	}
	return hits, misses, nil
}

// SetAsync writes docs to the cache without blocking the caller; failures
// are logged, not propagated, per spec.md §4.5's fire-and-forget policy for
// cache backfill.
func (c *redisCache) SetAsync(docs []document.Document) {
	go func() {
		ctx := context.Background()
		pipe := c.client.Pipeline()
		for _, doc := range docs {
			var buf bytes.Buffer
			if err := gob.NewEncoder(&buf).Encode(doc); err != nil {
				c.logger.Error().Err(err).Int64("documentId", doc.ID).Msg("cache encode failed")
				continue
			}
			pipe.Set(ctx, cacheKey(doc.ID), buf.Bytes(), 0)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			c.logger.Error().Err(err).Msg("cache write failed")
		}
	}()
}
