package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/scry-decks/internal/platform/sqlstore"
	"github.com/phrazzld/scry-decks/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open establishes a connection pool to PostgreSQL and checks it with a ping.
func Open(ctx context.Context, databaseURL string, maxOpenConns int) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(max(1, maxOpenConns/2))
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", MapError(err))
	}
	return db, nil
}

// NewDeckStore returns a DeckStore backed by PostgreSQL.
func NewDeckStore(db *sql.DB, logger *slog.Logger) *sqlstore.DeckStore {
	return sqlstore.NewDeckStore(db, store.DialectPostgres, MapError, logger)
}

// Migrate runs a goose command with the embedded PostgreSQL migrations.
func Migrate(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	return sqlstore.Migrate(ctx, db, store.DialectPostgres, migrationsFS, command, logger)
}
