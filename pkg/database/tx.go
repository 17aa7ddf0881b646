package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUnavailable is returned when a transaction keeps hitting transient
// store contention (lock wait timeout, serialization conflict, deadlock)
// after all retry attempts. Callers may retry the whole operation.
var ErrUnavailable = errors.New("store temporarily unavailable")

// RetryAttempts is how many times a transaction is attempted before
// giving up with ErrUnavailable. Retries happen back to back, no delay.
const RetryAttempts = 3

type txKey struct{}

// WithTx runs fn inside a transaction carried in the context. Nested calls
// reuse the caller's transaction. fn returning an error rolls back.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// RunInTx is WithTx plus the retry policy: transient store failures are
// retried up to RetryAttempts times, then reported as ErrUnavailable.
// Domain errors returned by fn pass through untouched on the first attempt.
func RunInTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < RetryAttempts; attempt++ {
		err = WithTx(ctx, pool, fn)
		if err == nil || !IsTransient(err) {
			return err
		}
	}
	return ErrUnavailable
}

// TxFromContext returns the transaction carried by ctx, or nil.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// Querier is the subset of pgx shared by pools and transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFromContext returns the context's transaction if one is open,
// otherwise the pool itself.
func QuerierFromContext(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsTransient reports whether err is a retryable store failure:
// serialization conflict, deadlock, lock wait timeout, or a statement
// cancelled by lock_timeout.
func IsTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "55P03", "57014":
		return true
	}
	return false
}
