package docstore

import (
	"context"
	"time"

	"gitlab.com/tozd/go/errors"

	"gitlab.com/wikidex/wikidex/internal/document"
)

// Article is the deduplicated article-level row the Writer stage upserts
// once per source Page, keyed by article id.
type Article struct {
	ID               int64
	Title            string
	AccessDate       time.Time
	ModificationDate time.Time
}

// WriteRecord is one Document and its Embedding, as the Writer stage
// persists them: compressed text plus the packed little-endian vector.
type WriteRecord struct {
	DocumentID       int64
	ArticleID        int64
	HeadingPath      []string
	CompressedText   []byte
	Vector           []byte
}

// Backend is the polymorphism point over the document store's two
// interchangeable persistence engines (an embedded file database and a
// networked relational database), both implementing the same point-lookup
// and ingest-write contracts.
type Backend interface {
	// RetrieveFromDB fetches the subset of ids that exist, joining the
	// document and article tables and decompressing text in the adapter.
	// Order is not guaranteed.
	RetrieveFromDB(ctx context.Context, ids []int64) ([]document.Document, errors.E)

	// CompletedOn returns the resumability marker written at the end of a
	// successful ingest run, and whether one exists.
	CompletedOn(ctx context.Context) (articleCount int64, ok bool, errE errors.E)

	// WriteBatch upserts articles and inserts documents/embeddings within a
	// single transaction. The Postgres backend retries it on serialization
	// failure or deadlock; the SQLite backend does not retry.
	WriteBatch(ctx context.Context, articles []Article, records []WriteRecord) errors.E

	// WriteCompletedOn persists the resumability marker.
	WriteCompletedOn(ctx context.Context, dbDate time.Time, articleCount int64) errors.E

	Close()
}
