package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/platform/logger"
	"github.com/phrazzld/scry-decks/internal/store"
)

// Seed writes decks, keeping their IDs, into a database that has never held
// a deck. It reports whether anything was written. A database whose deck
// counter has moved is left alone, even if all its decks were deleted.
func (s *DeckStore) Seed(ctx context.Context, decks []domain.Deck) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	seeded := false
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var next int64
		err := tx.QueryRowContext(ctx, s.q(`SELECT next_id FROM deck_counter WHERE id = 1`)).Scan(&next)
		if err != nil {
			return fmt.Errorf("failed to read deck counter: %w", err)
		}
		if next > 0 || len(decks) == 0 {
			return nil
		}

		for _, d := range decks {
			_, err := tx.ExecContext(ctx, s.q(`
				INSERT INTO decks (id, name, next_card_id) VALUES (?, ?, ?)
			`), d.ID, d.Name, d.MaxCardID()+1)
			if err != nil {
				return fmt.Errorf("failed to seed deck %d: %w", d.ID, err)
			}

			for _, c := range d.Cards {
				_, err := tx.ExecContext(ctx, s.q(`
					INSERT INTO cards (deck_id, id, front, back) VALUES (?, ?, ?, ?)
				`), d.ID, c.ID, c.Front, c.Back)
				if err != nil {
					return fmt.Errorf("failed to seed card %d of deck %d: %w", c.ID, d.ID, err)
				}
			}

			if d.ID >= next {
				next = d.ID + 1
			}
		}

		_, err = tx.ExecContext(ctx, s.q(`UPDATE deck_counter SET next_id = ? WHERE id = 1`), next)
		if err != nil {
			return fmt.Errorf("failed to advance deck counter: %w", err)
		}
		seeded = true
		return nil
	})
	if err != nil {
		log.Error("failed to seed decks", slog.String("error", err.Error()))
		return false, s.fail("deck", "seed", err)
	}

	if seeded {
		log.Info("seeded decks", slog.Int("deck_count", len(decks)))
	}
	return seeded, nil
}
