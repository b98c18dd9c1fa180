package database

import (
	"context"
	"database/sql"
)

// QueryExecutor is satisfied by both *sql.DB and *sql.Tx, so the Store works
// the same inside and outside a transaction.
type QueryExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}
