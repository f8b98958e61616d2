package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-decks/internal/domain"
)

// MockDeckStore implements store.DeckStore for testing
type MockDeckStore struct {
	ListDecksFn  func(ctx context.Context) ([]domain.Deck, error)
	GetDeckFn    func(ctx context.Context, deckID int64) (domain.Deck, error)
	InsertDeckFn func(ctx context.Context, payload domain.DeckPayload) (domain.Deck, error)
	EditDeckFn   func(ctx context.Context, deckID int64, payload domain.DeckPayload) (domain.Deck, error)
	DeleteDeckFn func(ctx context.Context, deckID int64) (domain.Deck, error)
	ListCardsFn  func(ctx context.Context, deckID int64) ([]domain.Card, error)
	GetCardFn    func(ctx context.Context, deckID, cardID int64) (domain.Card, error)
	InsertCardFn func(ctx context.Context, deckID int64, payload domain.CardPayload) (domain.Card, error)
	EditCardFn   func(ctx context.Context, deckID, cardID int64, payload domain.CardPayload) (domain.Card, error)
	DeleteCardFn func(ctx context.Context, deckID, cardID int64) (domain.Card, error)

	// DefaultError is returned by methods without a function set
	DefaultError error

	mu    sync.Mutex
	calls []string
}

func (m *MockDeckStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

// Calls returns the names of the methods called so far, in order.
func (m *MockDeckStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// ListDecks implements store.DeckStore.ListDecks
func (m *MockDeckStore) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	m.record("ListDecks")
	if m.ListDecksFn != nil {
		return m.ListDecksFn(ctx)
	}
	return nil, m.DefaultError
}

// GetDeck implements store.DeckStore.GetDeck
func (m *MockDeckStore) GetDeck(ctx context.Context, deckID int64) (domain.Deck, error) {
	m.record("GetDeck")
	if m.GetDeckFn != nil {
		return m.GetDeckFn(ctx, deckID)
	}
	return domain.Deck{}, m.DefaultError
}

// InsertDeck implements store.DeckStore.InsertDeck
func (m *MockDeckStore) InsertDeck(ctx context.Context, payload domain.DeckPayload) (domain.Deck, error) {
	m.record("InsertDeck")
	if m.InsertDeckFn != nil {
		return m.InsertDeckFn(ctx, payload)
	}
	return domain.Deck{}, m.DefaultError
}

// EditDeck implements store.DeckStore.EditDeck
func (m *MockDeckStore) EditDeck(ctx context.Context, deckID int64, payload domain.DeckPayload) (domain.Deck, error) {
	m.record("EditDeck")
	if m.EditDeckFn != nil {
		return m.EditDeckFn(ctx, deckID, payload)
	}
	return domain.Deck{}, m.DefaultError
}

// DeleteDeck implements store.DeckStore.DeleteDeck
func (m *MockDeckStore) DeleteDeck(ctx context.Context, deckID int64) (domain.Deck, error) {
	m.record("DeleteDeck")
	if m.DeleteDeckFn != nil {
		return m.DeleteDeckFn(ctx, deckID)
	}
	return domain.Deck{}, m.DefaultError
}

// ListCards implements store.DeckStore.ListCards
func (m *MockDeckStore) ListCards(ctx context.Context, deckID int64) ([]domain.Card, error) {
	m.record("ListCards")
	if m.ListCardsFn != nil {
		return m.ListCardsFn(ctx, deckID)
	}
	return nil, m.DefaultError
}

// GetCard implements store.DeckStore.GetCard
func (m *MockDeckStore) GetCard(ctx context.Context, deckID, cardID int64) (domain.Card, error) {
	m.record("GetCard")
	if m.GetCardFn != nil {
		return m.GetCardFn(ctx, deckID, cardID)
	}
	return domain.Card{}, m.DefaultError
}

// InsertCard implements store.DeckStore.InsertCard
func (m *MockDeckStore) InsertCard(ctx context.Context, deckID int64, payload domain.CardPayload) (domain.Card, error) {
	m.record("InsertCard")
	if m.InsertCardFn != nil {
		return m.InsertCardFn(ctx, deckID, payload)
	}
	return domain.Card{}, m.DefaultError
}

// EditCard implements store.DeckStore.EditCard
func (m *MockDeckStore) EditCard(
	ctx context.Context,
	deckID, cardID int64,
	payload domain.CardPayload,
) (domain.Card, error) {
	m.record("EditCard")
	if m.EditCardFn != nil {
		return m.EditCardFn(ctx, deckID, cardID, payload)
	}
	return domain.Card{}, m.DefaultError
}

// DeleteCard implements store.DeckStore.DeleteCard
func (m *MockDeckStore) DeleteCard(ctx context.Context, deckID, cardID int64) (domain.Card, error) {
	m.record("DeleteCard")
	if m.DeleteCardFn != nil {
		return m.DeleteCardFn(ctx, deckID, cardID)
	}
	return domain.Card{}, m.DefaultError
}
