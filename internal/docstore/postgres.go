package docstore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gitlab.com/tozd/go/errors"

	"gitlab.com/wikidex/wikidex/internal/document"
	"gitlab.com/wikidex/wikidex/internal/pgxutil"
)

// postgresBackend is the networked relational Backend, grounded on peer-db's
// pgxpool-based store adapters: a pool, context-scoped queries, and
// pgxutil-wrapped errors.
type postgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend connects to a PostgreSQL database and ensures the
// document store schema exists.
func NewPostgresBackend(ctx context.Context, url string) (Backend, errors.E) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if _, err := pool.Exec(ctx, schemaPostgres); err != nil {
		pool.Close()
		return nil, errors.WithStack(err)
	}
	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) RetrieveFromDB(ctx context.Context, ids []int64) ([]document.Document, errors.E) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := b.pool.Query(ctx, `
		SELECT d.id, d.text, d.heading_path, a.id, a.title, a.access_date, a.modification_date
		FROM document d
		JOIN article a ON a.id = d.article
		WHERE d.id = ANY($1)
	`, ids)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		doc, errE := scanDocumentRow(rows)
		if errE != nil {
			return nil, errE
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return docs, nil
}

func scanDocumentRow(rows pgx.Rows) (document.Document, errors.E) {
	var (
		doc            document.Document
		compressed     []byte
		headingPath    string
		accessDateMs   int64
		modificationMs int64
	)
	if err := rows.Scan(&doc.ID, &compressed, &headingPath, &doc.ArticleID, &doc.ArticleTitle, &accessDateMs, &modificationMs); err != nil {
		return document.Document{}, errors.WithStack(err)
	}

	text, errE := document.Decompress(compressed)
	if errE != nil {
		return document.Document{}, errE
	}
	doc.Text = text
	doc.HeadingPath = decodeHeadingPath(headingPath)

	accessDate, errE := document.EpochMsToTime(accessDateMs)
	if errE != nil {
		return document.Document{}, errE
	}
	modificationDate, errE := document.EpochMsToTime(modificationMs)
	if errE != nil {
		return document.Document{}, errE
	}
	doc.AccessDate = accessDate
	doc.ModificationDate = modificationDate
	doc.Provenance = document.Provenance{Wikipedia: &document.WikipediaProvenance{
		Title:            doc.ArticleTitle,
		AccessDate:       accessDate,
		ModificationDate: modificationDate,
	}}
	return doc, nil
}

func (b *postgresBackend) CompletedOn(ctx context.Context) (int64, bool, errors.E) {
	var articleCount int64
	err := b.pool.QueryRow(ctx, `SELECT article_count FROM completed_on LIMIT 1`).Scan(&articleCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, errors.WithStack(err)
	}
	return articleCount, true, nil
}

// WriteBatch upserts articles and inserts documents/embeddings within one
// serializable transaction, retried on serialization failure or deadlock
// per pgxutil.RetryTransaction.
func (b *postgresBackend) WriteBatch(ctx context.Context, articles []Article, records []WriteRecord) errors.E {
	return pgxutil.RetryTransaction(ctx, b.pool, pgx.ReadWrite, func(ctx context.Context, tx pgx.Tx) errors.E {
		for _, a := range articles {
			_, err := tx.Exec(ctx, `
				INSERT INTO article (id, title, access_date, modification_date)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO NOTHING
			`, a.ID, a.Title, document.TimeToEpochMs(a.AccessDate), document.TimeToEpochMs(a.ModificationDate))
			if err != nil {
				return pgxutil.WithPgxError(err)
			}
		}

		for _, r := range records {
			_, err := tx.Exec(ctx, `
				INSERT INTO document (id, text, article, heading_path)
				VALUES ($1, $2, $3, $4)
			`, r.DocumentID, r.CompressedText, r.ArticleID, encodeHeadingPath(r.HeadingPath))
			if err != nil {
				return pgxutil.WithPgxError(err)
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO embeddings (id, gte_small) VALUES ($1, $2)
			`, r.DocumentID, r.Vector)
			if err != nil {
				return pgxutil.WithPgxError(err)
			}
		}

		return nil
	})
}

func (b *postgresBackend) WriteCompletedOn(ctx context.Context, dbDate time.Time, articleCount int64) errors.E {
	_, err := b.pool.Exec(ctx, `DELETE FROM completed_on`)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = b.pool.Exec(ctx, `INSERT INTO completed_on (db_date, article_count) VALUES ($1, $2)`,
		document.TimeToEpochMs(dbDate), articleCount)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (b *postgresBackend) Close() {
	b.pool.Close()
}
