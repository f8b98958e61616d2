package store

import (
	"context"
	"database/sql"
)

// DBTX is the part of *sql.DB and *sql.Tx that the SQL deck store queries
// through, so one read helper serves both plain reads and transactions.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
