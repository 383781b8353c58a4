// Package pgxutil provides small PostgreSQL helpers shared by the document
// store and the ingestion pipeline writer: error detail extraction and a
// serializable-transaction retry loop.
package pgxutil

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"gitlab.com/tozd/go/errors"
)

const maxRetries = 10

// ErrMaxRetriesReached is returned by RetryTransaction when a transaction
// keeps failing with a serialization or deadlock error past maxRetries.
var ErrMaxRetriesReached = errors.Base("max retries reached")

// RetryTransaction runs fn inside a serializable PostgreSQL transaction,
// retrying on serialization failures and deadlocks up to maxRetries times.
// Any other error from fn, or from commit, aborts immediately.
func RetryTransaction(
	ctx context.Context, dbpool *pgxpool.Pool, accessMode pgx.TxAccessMode,
	fn func(ctx context.Context, tx pgx.Tx) errors.E,
) errors.E {
	for i := 0; i < maxRetries; i++ {
		if ctx.Err() != nil {
			return errors.WithStack(ctx.Err())
		}

		errE := runOnce(ctx, dbpool, accessMode, fn)
		if errE == nil {
			return nil
		}

		if errors.Is(errE, context.Canceled) || errors.Is(errE, context.DeadlineExceeded) {
			return errE
		}

		var pgError *pgconn.PgError
		if errors.As(errE, &pgError) {
			// See: https://www.postgresql.org/docs/current/mvcc-serialization-failure-handling.html
			switch pgError.Code {
			case ErrorCodeSerializationFailure, ErrorCodeDeadlockDetected:
				continue
			}
		}

		// A non-retryable error.
		return errE
	}

	return errors.WithStack(ErrMaxRetriesReached)
}

func runOnce(
	ctx context.Context, dbpool *pgxpool.Pool, accessMode pgx.TxAccessMode,
	fn func(ctx context.Context, tx pgx.Tx) errors.E,
) (errE errors.E) { //nolint:nonamedreturns
	tx, err := dbpool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:       pgx.Serializable,
		AccessMode:     accessMode,
		DeferrableMode: pgx.NotDeferrable,
	})
	if err != nil {
		return WithPgxError(err)
	}
	defer func() {
		rollbackErr := tx.Rollback(ctx)
		if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			errE = errors.Join(errE, rollbackErr)
		}
	}()

	errE = fn(ctx, tx)
	if errE != nil {
		return errE
	}

	err = tx.Commit(ctx)
	if err != nil && (errors.Is(err, pgx.ErrTxClosed) || errors.Is(err, pgx.ErrTxCommitRollback)) {
		// fn already committed or rolled back itself.
		return nil
	}
	return WithPgxError(err)
}
