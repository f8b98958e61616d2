package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-decks/internal/config"
	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/platform/memory"
	"github.com/phrazzld/scry-decks/internal/platform/postgres"
	"github.com/phrazzld/scry-decks/internal/platform/sqlite"
	"github.com/phrazzld/scry-decks/internal/platform/sqlstore"
	"github.com/phrazzld/scry-decks/internal/redact"
	"github.com/phrazzld/scry-decks/internal/seed"
	"github.com/phrazzld/scry-decks/internal/store"
)

// errNoDatabase is returned by database commands run against the memory backend.
var errNoDatabase = errors.New("the memory backend has no database")

// openDatabase opens the SQL database of the configured backend.
func openDatabase(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err = postgres.Open(ctx, cfg.DatabaseURL, cfg.MaxOpenConns)
	case config.BackendSQLite:
		db, err = sqlite.Open(ctx, cfg.DatabaseURL)
	case config.BackendMemory:
		return nil, errNoDatabase
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("database connection established",
		slog.String("backend", cfg.Backend),
		slog.String("database_url", redact.URL(cfg.DatabaseURL)))
	return db, nil
}

// migrateDatabase runs a goose command against db using the backend's migrations.
func migrateDatabase(ctx context.Context, db *sql.DB, backend, command string, logger *slog.Logger) error {
	switch backend {
	case config.BackendPostgres:
		return postgres.Migrate(ctx, db, command, logger)
	case config.BackendSQLite:
		return sqlite.Migrate(ctx, db, command, logger)
	default:
		return errNoDatabase
	}
}

// runMigrations opens the configured database, runs one migration command and
// closes the database again.
func runMigrations(ctx context.Context, cfg *config.Config, command string, logger *slog.Logger) error {
	db, err := openDatabase(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", slog.String("error", redact.Error(err)))
		}
	}()

	logger.Info("running migrations", slog.String("command", command))
	if err := migrateDatabase(ctx, db, cfg.Store.Backend, command, logger); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}

// openStore builds the configured deck store. For SQL backends it also
// returns the database, which the caller must close, and seeds the store
// the first time it is used.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.DeckStore, *sql.DB, error) {
	decks, err := seed.Load(cfg.Seed)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load seed decks: %w", err)
	}

	if cfg.Store.Backend == config.BackendMemory {
		s, err := memory.NewDeckStore(decks, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create memory store: %w", err)
		}
		logger.Info("memory store initialized", slog.Int("decks", len(decks)))
		return s, nil, nil
	}

	db, err := openDatabase(ctx, cfg.Store, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	s, err := initSQLStore(ctx, db, cfg, decks, logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return s, db, nil
}

func initSQLStore(
	ctx context.Context,
	db *sql.DB,
	cfg *config.Config,
	decks []domain.Deck,
	logger *slog.Logger,
) (*sqlstore.DeckStore, error) {
	if cfg.Store.MigrateOnStart {
		if err := migrateDatabase(ctx, db, cfg.Store.Backend, sqlstore.MigrateUp, logger); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	var s *sqlstore.DeckStore
	if cfg.Store.Backend == config.BackendPostgres {
		s = postgres.NewDeckStore(db, logger)
	} else {
		s = sqlite.NewDeckStore(db, logger)
	}

	seeded, err := s.Seed(ctx, decks)
	if err != nil {
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}
	logger.Info("sql store initialized",
		slog.String("backend", cfg.Store.Backend),
		slog.Bool("seeded", seeded))
	return s, nil
}
