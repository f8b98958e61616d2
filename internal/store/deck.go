package store

import (
	"context"

	"github.com/phrazzld/scry-decks/internal/domain"
)

// DeckStore defines the operations available on the deck/card collection.
// Every method returns copies of stored data; callers never receive a
// reference into an implementation's internal state.
//
// Not-found conditions are reported as ErrDeckNotFound or ErrCardNotFound.
// A store that can no longer serve requests reports ErrStoreUnavailable.
type DeckStore interface {
	// ListDecks returns every deck, with its cards, in creation order.
	ListDecks(ctx context.Context) ([]domain.Deck, error)

	// GetDeck returns the deck with the given ID, including its cards.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetDeck(ctx context.Context, deckID int64) (domain.Deck, error)

	// InsertDeck creates an empty deck and returns it with its assigned ID.
	// Deck IDs are never reused.
	InsertDeck(ctx context.Context, payload domain.DeckPayload) (domain.Deck, error)

	// EditDeck renames a deck and returns the updated deck.
	// Returns ErrDeckNotFound if the deck does not exist.
	EditDeck(ctx context.Context, deckID int64, payload domain.DeckPayload) (domain.Deck, error)

	// DeleteDeck removes a deck together with all of its cards and returns
	// what was removed. Returns ErrDeckNotFound if the deck does not exist.
	DeleteDeck(ctx context.Context, deckID int64) (domain.Deck, error)

	// ListCards returns the cards of a deck in insertion order.
	// Returns ErrDeckNotFound if the deck does not exist.
	ListCards(ctx context.Context, deckID int64) ([]domain.Card, error)

	// GetCard returns a single card of a deck.
	// Returns ErrDeckNotFound or ErrCardNotFound.
	GetCard(ctx context.Context, deckID, cardID int64) (domain.Card, error)

	// InsertCard appends a new card to a deck and returns it with its
	// assigned ID. Returns ErrDeckNotFound if the deck does not exist.
	InsertCard(ctx context.Context, deckID int64, payload domain.CardPayload) (domain.Card, error)

	// EditCard replaces the front and back of a card and returns the result.
	// Returns ErrDeckNotFound or ErrCardNotFound.
	EditCard(ctx context.Context, deckID, cardID int64, payload domain.CardPayload) (domain.Card, error)

	// DeleteCard removes a card from its deck and returns the removed card.
	// Returns ErrDeckNotFound or ErrCardNotFound.
	DeleteCard(ctx context.Context, deckID, cardID int64) (domain.Card, error)
}
