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

// ListCards implements store.DeckStore.ListCards.
func (s *DeckStore) ListCards(ctx context.Context, deckID int64) ([]domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Debug("listing cards", slog.Int64("deck_id", deckID))

	var cards []domain.Card
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.deckExists(ctx, tx, deckID); err != nil {
			return err
		}
		var err error
		cards, err = s.listCards(ctx, tx, deckID)
		return err
	})
	if err != nil {
		logFailure(log, "failed to list cards", err, slog.Int64("deck_id", deckID))
		return nil, s.fail("card", "list", err)
	}
	return cards, nil
}

func (s *DeckStore) listCards(ctx context.Context, db store.DBTX, deckID int64) ([]domain.Card, error) {
	rows, err := db.QueryContext(ctx, s.q(`
		SELECT id, front, back
		FROM cards
		WHERE deck_id = ?
		ORDER BY id
	`), deckID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cards := []domain.Card{}
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(&c.ID, &c.Front, &c.Back); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// GetCard implements store.DeckStore.GetCard.
func (s *DeckStore) GetCard(ctx context.Context, deckID, cardID int64) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Debug("retrieving card", slog.Int64("deck_id", deckID), slog.Int64("card_id", cardID))

	var card domain.Card
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.deckExists(ctx, tx, deckID); err != nil {
			return err
		}

		card.ID = cardID
		err := tx.QueryRowContext(ctx, s.q(`
			SELECT front, back FROM cards WHERE deck_id = ? AND id = ?
		`), deckID, cardID).Scan(&card.Front, &card.Back)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrCardNotFound
		}
		return err
	})
	if err != nil {
		logFailure(log, "failed to get card", err,
			slog.Int64("deck_id", deckID),
			slog.Int64("card_id", cardID))
		return domain.Card{}, s.fail("card", "get", err)
	}
	return card, nil
}

// InsertCard implements store.DeckStore.InsertCard.
// The deck's card counter is advanced and read in the same statement that
// proves the deck exists.
func (s *DeckStore) InsertCard(ctx context.Context, deckID int64, payload domain.CardPayload) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := payload.Validate(); err != nil {
		log.Warn("card validation failed during insert",
			slog.String("error", err.Error()),
			slog.Int64("deck_id", deckID))
		return domain.Card{}, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	card := domain.Card{Front: payload.Front, Back: payload.Back}
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, s.q(`
			UPDATE decks SET next_card_id = next_card_id + 1
			WHERE id = ?
			RETURNING next_card_id - 1
		`), deckID).Scan(&card.ID)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrDeckNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to claim card ID: %w", err)
		}

		_, err = tx.ExecContext(ctx, s.q(`
			INSERT INTO cards (deck_id, id, front, back) VALUES (?, ?, ?, ?)
		`), deckID, card.ID, card.Front, card.Back)
		return err
	})
	if err != nil {
		logFailure(log, "failed to insert card", err, slog.Int64("deck_id", deckID))
		return domain.Card{}, s.fail("card", "insert", err)
	}

	log.Info("card created successfully", slog.Int64("deck_id", deckID), slog.Int64("card_id", card.ID))
	return card, nil
}

// EditCard implements store.DeckStore.EditCard.
func (s *DeckStore) EditCard(
	ctx context.Context,
	deckID, cardID int64,
	payload domain.CardPayload,
) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := payload.Validate(); err != nil {
		log.Warn("card validation failed during edit",
			slog.String("error", err.Error()),
			slog.Int64("deck_id", deckID),
			slog.Int64("card_id", cardID))
		return domain.Card{}, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.deckExists(ctx, tx, deckID); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, s.q(`
			UPDATE cards SET front = ?, back = ? WHERE deck_id = ? AND id = ?
		`), payload.Front, payload.Back, deckID, cardID)
		if err != nil {
			return err
		}
		return checkRowsAffected(result, store.ErrCardNotFound)
	})
	if err != nil {
		logFailure(log, "failed to edit card", err,
			slog.Int64("deck_id", deckID),
			slog.Int64("card_id", cardID))
		return domain.Card{}, s.fail("card", "edit", err)
	}

	log.Info("card updated successfully", slog.Int64("deck_id", deckID), slog.Int64("card_id", cardID))
	return domain.Card{ID: cardID, Front: payload.Front, Back: payload.Back}, nil
}

// DeleteCard implements store.DeckStore.DeleteCard.
func (s *DeckStore) DeleteCard(ctx context.Context, deckID, cardID int64) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card := domain.Card{ID: cardID}
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.deckExists(ctx, tx, deckID); err != nil {
			return err
		}

		err := tx.QueryRowContext(ctx, s.q(`
			DELETE FROM cards WHERE deck_id = ? AND id = ?
			RETURNING front, back
		`), deckID, cardID).Scan(&card.Front, &card.Back)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrCardNotFound
		}
		return err
	})
	if err != nil {
		logFailure(log, "failed to delete card", err,
			slog.Int64("deck_id", deckID),
			slog.Int64("card_id", cardID))
		return domain.Card{}, s.fail("card", "delete", err)
	}

	log.Info("card deleted successfully", slog.Int64("deck_id", deckID), slog.Int64("card_id", cardID))
	return card, nil
}
