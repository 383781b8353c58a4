package docstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"gitlab.com/tozd/go/errors"

	"gitlab.com/wikidex/wikidex/internal/document"
)

// sqliteBackend is the embedded file Backend, for single-machine or
// evaluation deployments that don't run a Postgres server.
type sqliteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (creating if necessary) a SQLite file database and
// ensures the document store schema exists.
func NewSQLiteBackend(ctx context.Context, path string) (Backend, errors.E) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if _, err := db.ExecContext(ctx, schemaSQLite); err != nil {
		db.Close()
		return nil, errors.WithStack(err)
	}
	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) RetrieveFromDB(ctx context.Context, ids []int64) ([]document.Document, errors.E) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := b.db.QueryContext(ctx, `
		SELECT d.id, d.text, d.heading_path, a.id, a.title, a.access_date, a.modification_date
		FROM document d
		JOIN article a ON a.id = d.article
		WHERE d.id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		var (
			doc            document.Document
			compressed     []byte
			headingPath    string
			accessDateMs   int64
			modificationMs int64
		)
		if err := rows.Scan(&doc.ID, &compressed, &headingPath, &doc.ArticleID, &doc.ArticleTitle, &accessDateMs, &modificationMs); err != nil {
			return nil, errors.WithStack(err)
		}

		text, errE := document.Decompress(compressed)
		if errE != nil {
			return nil, errE
		}
		doc.Text = text
		doc.HeadingPath = decodeHeadingPath(headingPath)

		accessDate, errE := document.EpochMsToTime(accessDateMs)
		if errE != nil {
			return nil, errE
		}
		modificationDate, errE := document.EpochMsToTime(modificationMs)
		if errE != nil {
			return nil, errE
		}
		doc.AccessDate = accessDate
		doc.ModificationDate = modificationDate
		doc.Provenance = document.Provenance{Wikipedia: &document.WikipediaProvenance{
			Title:            doc.ArticleTitle,
			AccessDate:       accessDate,
			ModificationDate: modificationDate,
		}}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return docs, nil
}

func (b *sqliteBackend) CompletedOn(ctx context.Context) (int64, bool, errors.E) {
	var articleCount int64
	err := b.db.QueryRowContext(ctx, `SELECT article_count FROM completed_on LIMIT 1`).Scan(&articleCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, errors.WithStack(err)
	}
	return articleCount, true, nil
}

// WriteBatch upserts articles and inserts documents/embeddings within one
// transaction. SQLite has no distributed-deadlock concern, so this does
// not retry the way the Postgres backend does.
func (b *sqliteBackend) WriteBatch(ctx context.Context, articles []Article, records []WriteRecord) errors.E {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, a := range articles {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO article (id, title, access_date, modification_date)
			VALUES (?, ?, ?, ?)
		`, a.ID, a.Title, document.TimeToEpochMs(a.AccessDate), document.TimeToEpochMs(a.ModificationDate))
		if err != nil {
			return errors.WithStack(err)
		}
	}

	for _, r := range records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO document (id, text, article, heading_path) VALUES (?, ?, ?, ?)
		`, r.DocumentID, r.CompressedText, r.ArticleID, encodeHeadingPath(r.HeadingPath))
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.ExecContext(ctx, `INSERT INTO embeddings (id, gte_small) VALUES (?, ?)`, r.DocumentID, r.Vector)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (b *sqliteBackend) WriteCompletedOn(ctx context.Context, dbDate time.Time, articleCount int64) errors.E {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM completed_on`); err != nil {
		return errors.WithStack(err)
	}
	_, err := b.db.ExecContext(ctx, `INSERT INTO completed_on (db_date, article_count) VALUES (?, ?)`,
		document.TimeToEpochMs(dbDate), articleCount)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (b *sqliteBackend) Close() {
	b.db.Close()
}
