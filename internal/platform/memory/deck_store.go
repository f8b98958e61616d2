package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/platform/logger"
	"github.com/phrazzld/scry-decks/internal/store"
)

// deckEntry is a stored deck plus its card id counter.
type deckEntry struct {
	deck       domain.Deck
	nextCardID int64
}

// DeckStore implements store.DeckStore in memory.
type DeckStore struct {
	mu         sync.Mutex
	poisoned   bool
	decks      []*deckEntry
	nextDeckID int64

	logger *slog.Logger

	// beforeMutate, when set, runs under the lock right before a mutation
	// is applied. Tests use it to simulate a crash inside the critical section.
	beforeMutate func(op string)
}

// Ensure DeckStore implements store.DeckStore interface
var _ store.DeckStore = (*DeckStore)(nil)

// NewDeckStore creates a store holding deep copies of the initial decks,
// in the given order. Seeded decks keep their IDs. New deck IDs start after
// the largest seeded deck ID, and new card IDs in each deck start after the
// largest card ID already in it.
//
// It returns store.ErrInvalidEntity if two decks share an ID, two cards in
// one deck share an ID, or any ID is negative. If logger is nil, a default
// logger will be used.
func NewDeckStore(initial []domain.Deck, logger *slog.Logger) (*DeckStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &DeckStore{
		decks:  make([]*deckEntry, 0, len(initial)),
		logger: logger.With(slog.String("component", "memory_deck_store")),
	}

	seen := make(map[int64]bool, len(initial))
	for _, d := range initial {
		if d.ID < 0 {
			return nil, fmt.Errorf("%w: deck ID %d is negative", store.ErrInvalidEntity, d.ID)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("%w: duplicate deck ID %d", store.ErrInvalidEntity, d.ID)
		}
		seen[d.ID] = true

		cardIDs := make(map[int64]bool, len(d.Cards))
		for _, c := range d.Cards {
			if c.ID < 0 {
				return nil, fmt.Errorf("%w: card ID %d in deck %d is negative",
					store.ErrInvalidEntity, c.ID, d.ID)
			}
			if cardIDs[c.ID] {
				return nil, fmt.Errorf("%w: duplicate card ID %d in deck %d",
					store.ErrInvalidEntity, c.ID, d.ID)
			}
			cardIDs[c.ID] = true
		}

		s.decks = append(s.decks, &deckEntry{
			deck:       d.Clone(),
			nextCardID: d.MaxCardID() + 1,
		})
		if d.ID >= s.nextDeckID {
			s.nextDeckID = d.ID + 1
		}
	}

	return s, nil
}

// withLock runs fn while holding the store lock. A poisoned store fails
// without running fn. A panic in fn poisons the store. Logging happens only
// after the lock is released.
func (s *DeckStore) withLock(ctx context.Context, op string, fn func() error) error {
	recovered, err := s.locked(fn)
	if recovered != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("panic while holding store lock, store is now unavailable",
			slog.String("operation", op),
			slog.Any("panic", recovered))
	}
	if err != nil {
		if store.IsUnavailableError(err) {
			return store.NewStoreError("store", op, "store is poisoned", err)
		}
		return err
	}
	return nil
}

func (s *DeckStore) locked(fn func() error) (recovered any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poisoned {
		return nil, store.ErrStoreUnavailable
	}

	defer func() {
		if p := recover(); p != nil {
			s.poisoned = true
			recovered = p
			err = store.ErrStoreUnavailable
		}
	}()

	return nil, fn()
}

// mutate is called under the lock immediately before a mutation is applied.
func (s *DeckStore) mutate(op string) {
	if s.beforeMutate != nil {
		s.beforeMutate(op)
	}
}

// findDeck returns the entry for deckID. Callers must hold the lock.
func (s *DeckStore) findDeck(deckID int64) (int, *deckEntry) {
	for i, e := range s.decks {
		if e.deck.ID == deckID {
			return i, e
		}
	}
	return -1, nil
}

// ListDecks implements store.DeckStore.ListDecks.
func (s *DeckStore) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	var decks []domain.Deck
	err := s.withLock(ctx, "list_decks", func() error {
		decks = make([]domain.Deck, 0, len(s.decks))
		for _, e := range s.decks {
			decks = append(decks, e.deck.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decks, nil
}

// GetDeck implements store.DeckStore.GetDeck.
func (s *DeckStore) GetDeck(ctx context.Context, deckID int64) (domain.Deck, error) {
	var deck domain.Deck
	err := s.withLock(ctx, "get_deck", func() error {
		_, e := s.findDeck(deckID)
		if e == nil {
			return store.ErrDeckNotFound
		}
		deck = e.deck.Clone()
		return nil
	})
	if err != nil {
		s.logResult(ctx, "get_deck", err, slog.Int64("deck_id", deckID))
		return domain.Deck{}, err
	}
	return deck, nil
}

// InsertDeck implements store.DeckStore.InsertDeck.
func (s *DeckStore) InsertDeck(ctx context.Context, payload domain.DeckPayload) (domain.Deck, error) {
	if err := payload.Validate(); err != nil {
		return domain.Deck{}, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	var deck domain.Deck
	err := s.withLock(ctx, "insert_deck", func() error {
		s.mutate("insert_deck")
		e := &deckEntry{deck: domain.Deck{ID: s.nextDeckID, Name: payload.Name}}
		s.nextDeckID++
		s.decks = append(s.decks, e)
		deck = e.deck.Clone()
		return nil
	})
	if err != nil {
		return domain.Deck{}, err
	}

	s.logResult(ctx, "insert_deck", nil, slog.Int64("deck_id", deck.ID))
	return deck, nil
}

// EditDeck implements store.DeckStore.EditDeck.
func (s *DeckStore) EditDeck(ctx context.Context, deckID int64, payload domain.DeckPayload) (domain.Deck, error) {
	if err := payload.Validate(); err != nil {
		return domain.Deck{}, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	var deck domain.Deck
	err := s.withLock(ctx, "edit_deck", func() error {
		_, e := s.findDeck(deckID)
		if e == nil {
			return store.ErrDeckNotFound
		}
		s.mutate("edit_deck")
		e.deck.Name = payload.Name
		deck = e.deck.Clone()
		return nil
	})
	s.logResult(ctx, "edit_deck", err, slog.Int64("deck_id", deckID))
	if err != nil {
		return domain.Deck{}, err
	}
	return deck, nil
}

// DeleteDeck implements store.DeckStore.DeleteDeck.
// The deck ID is not reused afterwards.
func (s *DeckStore) DeleteDeck(ctx context.Context, deckID int64) (domain.Deck, error) {
	var deck domain.Deck
	err := s.withLock(ctx, "delete_deck", func() error {
		i, e := s.findDeck(deckID)
		if e == nil {
			return store.ErrDeckNotFound
		}
		s.mutate("delete_deck")
		s.decks = append(s.decks[:i], s.decks[i+1:]...)
		deck = e.deck.Clone()
		return nil
	})
	s.logResult(ctx, "delete_deck", err, slog.Int64("deck_id", deckID))
	if err != nil {
		return domain.Deck{}, err
	}
	return deck, nil
}

// ListCards implements store.DeckStore.ListCards.
func (s *DeckStore) ListCards(ctx context.Context, deckID int64) ([]domain.Card, error) {
	var cards []domain.Card
	err := s.withLock(ctx, "list_cards", func() error {
		_, e := s.findDeck(deckID)
		if e == nil {
			return store.ErrDeckNotFound
		}
		cards = make([]domain.Card, len(e.deck.Cards))
		copy(cards, e.deck.Cards)
		return nil
	})
	if err != nil {
		s.logResult(ctx, "list_cards", err, slog.Int64("deck_id", deckID))
		return nil, err
	}
	return cards, nil
}

// GetCard implements store.DeckStore.GetCard.
func (s *DeckStore) GetCard(ctx context.Context, deckID, cardID int64) (domain.Card, error) {
	var card domain.Card
	err := s.withLock(ctx, "get_card", func() error {
		_, e := s.findDeck(deckID)
		if e == nil {
			return store.ErrDeckNotFound
		}
		i := e.deck.FindCard(cardID)
		if i < 0 {
			return store.ErrCardNotFound
		}
		card = e.deck.Cards[i]
		return nil
	})
	if err != nil {
		s.logResult(ctx, "get_card", err, slog.Int64("deck_id", deckID), slog.Int64("card_id", cardID))
		return domain.Card{}, err
	}
	return card, nil
}

// InsertCard implements store.DeckStore.InsertCard.
// Card IDs come from a per-deck counter and are never reused within the deck,
// so deleting a card does not shift the IDs of the cards after it.
func (s *DeckStore) InsertCard(ctx context.Context, deckID int64, payload domain.CardPayload) (domain.Card, error) {
	if err := payload.Validate(); err != nil {
		return domain.Card{}, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	var card domain.Card
	err := s.withLock(ctx, "insert_card", func() error {
		_, e := s.findDeck(deckID)
		if e == nil {
			return store.ErrDeckNotFound
		}
		s.mutate("insert_card")
		card = domain.Card{ID: e.nextCardID, Front: payload.Front, Back: payload.Back}
		e.nextCardID++
		e.deck.Cards = append(e.deck.Cards, card)
		return nil
	})
	if err != nil {
		s.logResult(ctx, "insert_card", err, slog.Int64("deck_id", deckID))
		return domain.Card{}, err
	}
	s.logResult(ctx, "insert_card", nil, slog.Int64("deck_id", deckID), slog.Int64("card_id", card.ID))
	return card, nil
}

// EditCard implements store.DeckStore.EditCard.
func (s *DeckStore) EditCard(
	ctx context.Context,
	deckID, cardID int64,
	payload domain.CardPayload,
) (domain.Card, error) {
	if err := payload.Validate(); err != nil {
		return domain.Card{}, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	var card domain.Card
	err := s.withLock(ctx, "edit_card", func() error {
		_, e := s.findDeck(deckID)
		if e == nil {
			return store.ErrDeckNotFound
		}
		i := e.deck.FindCard(cardID)
		if i < 0 {
			return store.ErrCardNotFound
		}
		s.mutate("edit_card")
		e.deck.Cards[i].Apply(payload)
		card = e.deck.Cards[i]
		return nil
	})
	s.logResult(ctx, "edit_card", err, slog.Int64("deck_id", deckID), slog.Int64("card_id", cardID))
	if err != nil {
		return domain.Card{}, err
	}
	return card, nil
}

// DeleteCard implements store.DeckStore.DeleteCard.
func (s *DeckStore) DeleteCard(ctx context.Context, deckID, cardID int64) (domain.Card, error) {
	var card domain.Card
	err := s.withLock(ctx, "delete_card", func() error {
		_, e := s.findDeck(deckID)
		if e == nil {
			return store.ErrDeckNotFound
		}
		i := e.deck.FindCard(cardID)
		if i < 0 {
			return store.ErrCardNotFound
		}
		s.mutate("delete_card")
		card = e.deck.Cards[i]
		e.deck.Cards = append(e.deck.Cards[:i], e.deck.Cards[i+1:]...)
		return nil
	})
	s.logResult(ctx, "delete_card", err, slog.Int64("deck_id", deckID), slog.Int64("card_id", cardID))
	if err != nil {
		return domain.Card{}, err
	}
	return card, nil
}

// logResult logs the outcome of an operation. Not-found results are
// expected and logged at debug level.
func (s *DeckStore) logResult(ctx context.Context, op string, err error, attrs ...slog.Attr) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	args := make([]any, 0, len(attrs)+2)
	args = append(args, slog.String("operation", op))
	for _, a := range attrs {
		args = append(args, a)
	}

	switch {
	case err == nil:
		log.Debug("store operation succeeded", args...)
	case store.IsNotFoundError(err):
		log.Debug("store entity not found", append(args, slog.String("error", err.Error()))...)
	default:
		log.Error("store operation failed", append(args, slog.String("error", err.Error()))...)
	}
}
