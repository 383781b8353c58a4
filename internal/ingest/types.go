// Package ingest wires the staged ingestion pipeline spec.md §4.7
// describes: Reader -> Normalizer -> HeadingSplitter -> ChunkSplitter ->
// Embedder -> Compressor -> Batcher -> Writer, each stage adapted onto
// internal/pipeline's generic Stage/Link machinery.
//
// Grounded on original_source's wikipedia_dump_reader.rs for the per-page
// timeout and the heading-splitter's three-case logic, and on peer-db's
// cmd/prepare/embed.go for the batched-embedding/progress-ticker shape.
package ingest

import "time"

// normalizedArticle is one page after markup normalization: a single
// string carrying inline heading-path sentinels, not yet split into
// Documents.
type normalizedArticle struct {
	ArticleID int64
	Title     string
	Text      string
	Date      time.Time
}

// splitDocument is one heading-delimited section of an article, before
// length-based chunking.
type splitDocument struct {
	ArticleID    int64
	ArticleTitle string
	HeadingPath  []string
	Text         string
	Date         time.Time
}

// chunkedDocument is one length-bounded passage, ready to be embedded.
type chunkedDocument struct {
	ArticleID    int64
	ArticleTitle string
	HeadingPath  []string
	Text         string
	Date         time.Time
}

// embeddedDocument additionally carries its dense vector.
type embeddedDocument struct {
	chunkedDocument
	DocumentID int64
	Vector     []float32
}

// preparedRecord is a write-ready record: compressed text and packed
// vector, alongside the article metadata the Writer stage upserts once per
// article.
type preparedRecord struct {
	ArticleID        int64
	ArticleTitle     string
	AccessDate       time.Time
	ModificationDate time.Time
	HeadingPath      []string
	DocumentID       int64
	CompressedText   []byte
	Vector           []byte
}
