package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/platform/logger"
	"github.com/phrazzld/scry-decks/internal/store"
)

// ErrorMapper translates driver errors into store errors.
type ErrorMapper func(error) error

// DeckStore implements store.DeckStore using a SQL database.
type DeckStore struct {
	db       *sql.DB
	dialect  store.Dialect
	mapError ErrorMapper
	logger   *slog.Logger
}

// Ensure DeckStore implements store.DeckStore interface
var _ store.DeckStore = (*DeckStore)(nil)

// NewDeckStore creates a SQL DeckStore. The schema must already be migrated.
// If mapError is nil, driver errors are returned unmapped. If logger is nil,
// a default logger will be used.
func NewDeckStore(db *sql.DB, dialect store.Dialect, mapError ErrorMapper, logger *slog.Logger) *DeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if mapError == nil {
		mapError = func(err error) error { return err }
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckStore{
		db:       db,
		dialect:  dialect,
		mapError: mapError,
		logger: logger.With(
			slog.String("component", "sql_deck_store"),
			slog.String("dialect", dialect.Name),
		),
	}
}

// q rebinds a query for the store's dialect.
func (s *DeckStore) q(query string) string {
	return s.dialect.Rebind(query)
}

// fail wraps an unexpected database error. Store sentinels pass through.
func (s *DeckStore) fail(entity, op string, err error) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidEntity) {
		return err
	}
	return store.NewStoreError(entity, op, "database operation failed", s.mapError(err))
}

// logFailure logs a failed operation: at debug level when the deck or card
// does not exist, at error level otherwise.
func logFailure(log *slog.Logger, msg string, err error, attrs ...any) {
	attrs = append([]any{slog.String("error", err.Error())}, attrs...)
	if store.IsNotFoundError(err) {
		log.Debug(msg, attrs...)
		return
	}
	log.Error(msg, attrs...)
}

// ListDecks implements store.DeckStore.ListDecks.
func (s *DeckStore) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Debug("listing decks")

	var decks []domain.Deck
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		decks, err = s.listDecks(ctx, tx)
		return err
	})
	if err != nil {
		log.Error("failed to list decks", slog.String("error", err.Error()))
		return nil, s.fail("deck", "list", err)
	}
	return decks, nil
}

func (s *DeckStore) listDecks(ctx context.Context, db store.DBTX) ([]domain.Deck, error) {
	rows, err := db.QueryContext(ctx, s.q(`SELECT id, name FROM decks ORDER BY id`))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	decks := []domain.Deck{}
	index := make(map[int64]int)
	for rows.Next() {
		var d domain.Deck
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		index[d.ID] = len(decks)
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cardRows, err := db.QueryContext(ctx, s.q(`
		SELECT deck_id, id, front, back
		FROM cards
		ORDER BY deck_id, id
	`))
	if err != nil {
		return nil, err
	}
	defer func() { _ = cardRows.Close() }()

	for cardRows.Next() {
		var deckID int64
		var c domain.Card
		if err := cardRows.Scan(&deckID, &c.ID, &c.Front, &c.Back); err != nil {
			return nil, err
		}
		if i, ok := index[deckID]; ok {
			decks[i].Cards = append(decks[i].Cards, c)
		}
	}
	return decks, cardRows.Err()
}

// GetDeck implements store.DeckStore.GetDeck.
func (s *DeckStore) GetDeck(ctx context.Context, deckID int64) (domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Debug("retrieving deck", slog.Int64("deck_id", deckID))

	var deck domain.Deck
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		deck, err = s.getDeck(ctx, tx, deckID)
		return err
	})
	if err != nil {
		logFailure(log, "failed to get deck", err, slog.Int64("deck_id", deckID))
		return domain.Deck{}, s.fail("deck", "get", err)
	}
	return deck, nil
}

func (s *DeckStore) getDeck(ctx context.Context, db store.DBTX, deckID int64) (domain.Deck, error) {
	deck := domain.Deck{ID: deckID}
	err := db.QueryRowContext(ctx, s.q(`SELECT name FROM decks WHERE id = ?`), deckID).Scan(&deck.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Deck{}, store.ErrDeckNotFound
	}
	if err != nil {
		return domain.Deck{}, err
	}

	deck.Cards, err = s.listCards(ctx, db, deckID)
	if err != nil {
		return domain.Deck{}, err
	}
	if len(deck.Cards) == 0 {
		deck.Cards = nil
	}
	return deck, nil
}

// deckExists returns store.ErrDeckNotFound when the deck is missing.
func (s *DeckStore) deckExists(ctx context.Context, db store.DBTX, deckID int64) error {
	var one int
	err := db.QueryRowContext(ctx, s.q(`SELECT 1 FROM decks WHERE id = ?`), deckID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrDeckNotFound
	}
	return err
}

// InsertDeck implements store.DeckStore.InsertDeck.
func (s *DeckStore) InsertDeck(ctx context.Context, payload domain.DeckPayload) (domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := payload.Validate(); err != nil {
		log.Warn("deck validation failed during insert", slog.String("error", err.Error()))
		return domain.Deck{}, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	deck := domain.Deck{Name: payload.Name}
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, s.q(`
			UPDATE deck_counter SET next_id = next_id + 1
			WHERE id = 1
			RETURNING next_id - 1
		`)).Scan(&deck.ID)
		if err != nil {
			return fmt.Errorf("failed to claim deck ID: %w", err)
		}

		_, err = tx.ExecContext(ctx, s.q(`INSERT INTO decks (id, name) VALUES (?, ?)`), deck.ID, deck.Name)
		return err
	})
	if err != nil {
		log.Error("failed to insert deck", slog.String("error", err.Error()))
		return domain.Deck{}, s.fail("deck", "insert", err)
	}

	log.Info("deck created successfully", slog.Int64("deck_id", deck.ID))
	return deck, nil
}

// EditDeck implements store.DeckStore.EditDeck.
func (s *DeckStore) EditDeck(ctx context.Context, deckID int64, payload domain.DeckPayload) (domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := payload.Validate(); err != nil {
		log.Warn("deck validation failed during edit", slog.String("error", err.Error()))
		return domain.Deck{}, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	var deck domain.Deck
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, s.q(`UPDATE decks SET name = ? WHERE id = ?`), payload.Name, deckID)
		if err != nil {
			return err
		}
		if err := checkRowsAffected(result, store.ErrDeckNotFound); err != nil {
			return err
		}

		deck, err = s.getDeck(ctx, tx, deckID)
		return err
	})
	if err != nil {
		logFailure(log, "failed to edit deck", err, slog.Int64("deck_id", deckID))
		return domain.Deck{}, s.fail("deck", "edit", err)
	}

	log.Info("deck renamed successfully", slog.Int64("deck_id", deckID))
	return deck, nil
}

// DeleteDeck implements store.DeckStore.DeleteDeck.
func (s *DeckStore) DeleteDeck(ctx context.Context, deckID int64) (domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var deck domain.Deck
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		deck, err = s.getDeck(ctx, tx, deckID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM cards WHERE deck_id = ?`), deckID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, s.q(`DELETE FROM decks WHERE id = ?`), deckID)
		return err
	})
	if err != nil {
		logFailure(log, "failed to delete deck", err, slog.Int64("deck_id", deckID))
		return domain.Deck{}, s.fail("deck", "delete", err)
	}

	log.Info("deck deleted successfully",
		slog.Int64("deck_id", deckID),
		slog.Int("card_count", len(deck.Cards)))
	return deck, nil
}

// checkRowsAffected returns notFound when result touched no rows.
func checkRowsAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
