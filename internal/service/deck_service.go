package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/events"
	"github.com/phrazzld/scry-decks/internal/platform/logger"
	"github.com/phrazzld/scry-decks/internal/redact"
	"github.com/phrazzld/scry-decks/internal/store"
)

// DeckService provides deck and card operations
type DeckService interface {
	// ListDecks returns every deck with its cards
	ListDecks(ctx context.Context) ([]domain.Deck, error)

	// GetDeck retrieves a deck and its cards
	GetDeck(ctx context.Context, deckID int64) (domain.Deck, error)

	// CreateDeck creates an empty deck
	CreateDeck(ctx context.Context, payload domain.DeckPayload) (domain.Deck, error)

	// RenameDeck changes a deck's name
	RenameDeck(ctx context.Context, deckID int64, payload domain.DeckPayload) (domain.Deck, error)

	// DeleteDeck removes a deck and all of its cards
	DeleteDeck(ctx context.Context, deckID int64) (domain.Deck, error)

	// ListCards returns the cards of a deck
	ListCards(ctx context.Context, deckID int64) ([]domain.Card, error)

	// GetCard retrieves a single card
	GetCard(ctx context.Context, deckID, cardID int64) (domain.Card, error)

	// CreateCard adds a card to a deck
	CreateCard(ctx context.Context, deckID int64, payload domain.CardPayload) (domain.Card, error)

	// UpdateCard replaces both sides of a card
	UpdateCard(ctx context.Context, deckID, cardID int64, payload domain.CardPayload) (domain.Card, error)

	// DeleteCard removes a card from its deck
	DeleteCard(ctx context.Context, deckID, cardID int64) (domain.Card, error)
}

// deckServiceImpl implements the DeckService interface
type deckServiceImpl struct {
	store   store.DeckStore
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewDeckService creates a new DeckService.
// A nil emitter disables events. If logger is nil, a default logger will be used.
func NewDeckService(
	deckStore store.DeckStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (DeckService, error) {
	if deckStore == nil {
		return nil, NewDeckServiceError("new", "deck store cannot be nil", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &deckServiceImpl{
		store:   deckStore,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "deck_service")),
	}, nil
}

// storeError wraps a store failure and logs it. Not-found is expected
// and logged at debug level.
func (s *deckServiceImpl) storeError(
	ctx context.Context,
	op, message string,
	err error,
	attrs ...any,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	attrs = append(attrs, slog.String("error", redact.Error(err)))
	if store.IsNotFoundError(err) {
		log.Debug(message, attrs...)
	} else {
		log.Error(message, attrs...)
	}
	return NewDeckServiceError(op, message, err)
}

// emit publishes an event. Failures are logged and never returned.
func (s *deckServiceImpl) emit(ctx context.Context, event *events.DeckEvent) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to emit event",
			slog.String("error", redact.Error(err)),
			slog.String("event_type", event.Type),
			slog.Int64("deck_id", event.DeckID))
	}
}

// ListDecks implements DeckService.ListDecks
func (s *deckServiceImpl) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	decks, err := s.store.ListDecks(ctx)
	if err != nil {
		return nil, s.storeError(ctx, "list_decks", "failed to list decks", err)
	}
	return decks, nil
}

// GetDeck implements DeckService.GetDeck
func (s *deckServiceImpl) GetDeck(ctx context.Context, deckID int64) (domain.Deck, error) {
	deck, err := s.store.GetDeck(ctx, deckID)
	if err != nil {
		return domain.Deck{}, s.storeError(ctx, "get_deck", "failed to get deck", err,
			slog.Int64("deck_id", deckID))
	}
	return deck, nil
}

// CreateDeck implements DeckService.CreateDeck
func (s *deckServiceImpl) CreateDeck(ctx context.Context, payload domain.DeckPayload) (domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	payload, err := cleanDeck(payload)
	if err != nil {
		log.Debug("invalid deck payload", slog.String("error", err.Error()))
		return domain.Deck{}, err
	}

	deck, err := s.store.InsertDeck(ctx, payload)
	if err != nil {
		return domain.Deck{}, s.storeError(ctx, "create_deck", "failed to create deck", err)
	}

	log.Info("deck created", slog.Int64("deck_id", deck.ID))
	s.emit(ctx, events.NewDeckEvent(events.DeckCreated, deck.ID))
	return deck, nil
}

// RenameDeck implements DeckService.RenameDeck
func (s *deckServiceImpl) RenameDeck(
	ctx context.Context,
	deckID int64,
	payload domain.DeckPayload,
) (domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	payload, err := cleanDeck(payload)
	if err != nil {
		log.Debug("invalid deck payload", slog.String("error", err.Error()), slog.Int64("deck_id", deckID))
		return domain.Deck{}, err
	}

	deck, err := s.store.EditDeck(ctx, deckID, payload)
	if err != nil {
		return domain.Deck{}, s.storeError(ctx, "rename_deck", "failed to rename deck", err,
			slog.Int64("deck_id", deckID))
	}

	log.Info("deck renamed", slog.Int64("deck_id", deckID))
	s.emit(ctx, events.NewDeckEvent(events.DeckRenamed, deckID))
	return deck, nil
}

// DeleteDeck implements DeckService.DeleteDeck
func (s *deckServiceImpl) DeleteDeck(ctx context.Context, deckID int64) (domain.Deck, error) {
	deck, err := s.store.DeleteDeck(ctx, deckID)
	if err != nil {
		return domain.Deck{}, s.storeError(ctx, "delete_deck", "failed to delete deck", err,
			slog.Int64("deck_id", deckID))
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("deck deleted",
		slog.Int64("deck_id", deckID),
		slog.Int("card_count", len(deck.Cards)))
	s.emit(ctx, events.NewDeckEvent(events.DeckDeleted, deckID))
	return deck, nil
}

// ListCards implements DeckService.ListCards
func (s *deckServiceImpl) ListCards(ctx context.Context, deckID int64) ([]domain.Card, error) {
	cards, err := s.store.ListCards(ctx, deckID)
	if err != nil {
		return nil, s.storeError(ctx, "list_cards", "failed to list cards", err,
			slog.Int64("deck_id", deckID))
	}
	return cards, nil
}

// GetCard implements DeckService.GetCard
func (s *deckServiceImpl) GetCard(ctx context.Context, deckID, cardID int64) (domain.Card, error) {
	card, err := s.store.GetCard(ctx, deckID, cardID)
	if err != nil {
		return domain.Card{}, s.storeError(ctx, "get_card", "failed to get card", err,
			slog.Int64("deck_id", deckID),
			slog.Int64("card_id", cardID))
	}
	return card, nil
}

// CreateCard implements DeckService.CreateCard
func (s *deckServiceImpl) CreateCard(
	ctx context.Context,
	deckID int64,
	payload domain.CardPayload,
) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	payload, err := cleanCard(payload)
	if err != nil {
		log.Debug("invalid card payload", slog.String("error", err.Error()), slog.Int64("deck_id", deckID))
		return domain.Card{}, err
	}

	card, err := s.store.InsertCard(ctx, deckID, payload)
	if err != nil {
		return domain.Card{}, s.storeError(ctx, "create_card", "failed to create card", err,
			slog.Int64("deck_id", deckID))
	}

	log.Info("card created", slog.Int64("deck_id", deckID), slog.Int64("card_id", card.ID))
	s.emit(ctx, events.NewCardEvent(events.CardCreated, deckID, card.ID))
	return card, nil
}

// UpdateCard implements DeckService.UpdateCard
func (s *deckServiceImpl) UpdateCard(
	ctx context.Context,
	deckID, cardID int64,
	payload domain.CardPayload,
) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	payload, err := cleanCard(payload)
	if err != nil {
		log.Debug("invalid card payload",
			slog.String("error", err.Error()),
			slog.Int64("deck_id", deckID),
			slog.Int64("card_id", cardID))
		return domain.Card{}, err
	}

	card, err := s.store.EditCard(ctx, deckID, cardID, payload)
	if err != nil {
		return domain.Card{}, s.storeError(ctx, "update_card", "failed to update card", err,
			slog.Int64("deck_id", deckID),
			slog.Int64("card_id", cardID))
	}

	log.Info("card updated", slog.Int64("deck_id", deckID), slog.Int64("card_id", cardID))
	s.emit(ctx, events.NewCardEvent(events.CardUpdated, deckID, cardID))
	return card, nil
}

// DeleteCard implements DeckService.DeleteCard
func (s *deckServiceImpl) DeleteCard(ctx context.Context, deckID, cardID int64) (domain.Card, error) {
	card, err := s.store.DeleteCard(ctx, deckID, cardID)
	if err != nil {
		return domain.Card{}, s.storeError(ctx, "delete_card", "failed to delete card", err,
			slog.Int64("deck_id", deckID),
			slog.Int64("card_id", cardID))
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("card deleted",
		slog.Int64("deck_id", deckID),
		slog.Int64("card_id", cardID))
	s.emit(ctx, events.NewCardEvent(events.CardDeleted, deckID, cardID))
	return card, nil
}
