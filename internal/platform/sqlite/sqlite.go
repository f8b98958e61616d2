package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/phrazzld/scry-decks/internal/platform/sqlstore"
	"github.com/phrazzld/scry-decks/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// pragmas applied to every connection.
var pragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_pragma=journal_mode(WAL)",
}

// DSN turns a file path or file: URI into a DSN with the required pragmas.
func DSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	var extra []string
	for _, p := range pragmas {
		if !strings.Contains(path, p[:strings.Index(p, "(")]) {
			extra = append(extra, p)
		}
	}
	if len(extra) == 0 {
		return path
	}
	return path + sep + strings.Join(extra, "&")
}

// Open opens the SQLite database at path. SQLite allows one writer at a
// time, so the pool is limited to a single connection.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", MapError(err))
	}
	return db, nil
}

// NewDeckStore returns a DeckStore backed by SQLite.
func NewDeckStore(db *sql.DB, logger *slog.Logger) *sqlstore.DeckStore {
	return sqlstore.NewDeckStore(db, store.DialectSQLite, MapError, logger)
}

// Migrate runs a goose command with the embedded SQLite migrations.
func Migrate(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	return sqlstore.Migrate(ctx, db, store.DialectSQLite, migrationsFS, command, logger)
}

// MapError maps a SQLite error to a store error, keeping the original
// error in the chain.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}
	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}

	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	// Extended result codes carry the primary code in the low byte.
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		return fmt.Errorf("%w: constraint violation: %w", store.ErrInvalidEntity, err)
	case sqlite3.SQLITE_CANTOPEN,
		sqlite3.SQLITE_IOERR,
		sqlite3.SQLITE_CORRUPT,
		sqlite3.SQLITE_NOTADB,
		sqlite3.SQLITE_READONLY,
		sqlite3.SQLITE_FULL:
		return fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}
	return err
}
