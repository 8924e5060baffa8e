package store

import (
	"context"
	"database/sql"
)

// DBTX is the slice of database/sql the Postgres stores query through. Both
// *sql.DB and *sql.Tx satisfy it, so the same store can run against the pool
// or, rebound with WithTx, inside a caller's transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
