package docstore

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"gitlab.com/wikidex/wikidex/internal/document"
)

// memCache is an in-process LRU cache of Documents in front of the shared
// Redis cache, counting misses so callers can monitor hit ratio.
//
// Grounded on peer-db's internal/es.Cache (an LRU wrapping
// hashicorp/golang-lru with an atomic miss counter), generalized from
// caching Elasticsearch documents to caching retrieval Documents.
type memCache struct {
	cache     *lru.Cache[int64, document.Document]
	missCount uint64
}

func newMemCache(size int) (*memCache, error) {
	c, err := lru.New[int64, document.Document](size)
	if err != nil {
		return nil, err
	}
	return &memCache{cache: c}, nil
}

func (c *memCache) Get(id int64) (document.Document, bool) {
	v, ok := c.cache.Get(id)
	if !ok {
		atomic.AddUint64(&c.missCount, 1)
	}
	return v, ok
}

func (c *memCache) Add(doc document.Document) {
	c.cache.Add(doc.ID, doc)
}

// MissCount returns the number of misses since the last call, resetting the
// counter, the same semantics as peer-db's Cache.MissCount.
func (c *memCache) MissCount() uint64 {
	return atomic.SwapUint64(&c.missCount, 0)
}
