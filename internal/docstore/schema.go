package docstore

// Schema is the relational layout both backends share, per spec.md §6:
// article/document tables for the document store, an embeddings table
// written by the ingestion pipeline's Writer stage, and a single-row
// completed_on marker used by the startup resumability check.
const (
	schemaPostgres = `
CREATE TABLE IF NOT EXISTS article (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	access_date BIGINT NOT NULL,
	modification_date BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS document (
	id BIGINT PRIMARY KEY,
	text BYTEA NOT NULL,
	article INTEGER NOT NULL REFERENCES article(id),
	heading_path TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS embeddings (
	id BIGINT PRIMARY KEY,
	gte_small BYTEA NOT NULL
);
CREATE TABLE IF NOT EXISTS completed_on (
	db_date BIGINT NOT NULL,
	article_count BIGINT NOT NULL
);
`

	schemaSQLite = `
CREATE TABLE IF NOT EXISTS article (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	access_date INTEGER NOT NULL,
	modification_date INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS document (
	id INTEGER PRIMARY KEY,
	text BLOB NOT NULL,
	article INTEGER NOT NULL REFERENCES article(id),
	heading_path TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS embeddings (
	id INTEGER PRIMARY KEY,
	gte_small BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS completed_on (
	db_date INTEGER NOT NULL,
	article_count INTEGER NOT NULL
);
`
)
