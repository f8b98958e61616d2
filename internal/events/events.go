package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted after successful mutations.
const (
	DeckCreated = "deck.created"
	DeckRenamed = "deck.renamed"
	DeckDeleted = "deck.deleted"
	CardCreated = "card.created"
	CardUpdated = "card.updated"
	CardDeleted = "card.deleted"
)

// DeckEvent records a change to a deck or to one of its cards.
type DeckEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the event type constants
	Type string `json:"type"`

	// DeckID is the deck that changed, or that owns the changed card
	DeckID int64 `json:"deck_id"`

	// CardID is set for card events only
	CardID *int64 `json:"card_id,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewDeckEvent creates an event for a deck-level change.
func NewDeckEvent(eventType string, deckID int64) *DeckEvent {
	return &DeckEvent{
		ID:        uuid.New(),
		Type:      eventType,
		DeckID:    deckID,
		CreatedAt: time.Now().UTC(),
	}
}

// NewCardEvent creates an event for a change to a card in a deck.
func NewCardEvent(eventType string, deckID, cardID int64) *DeckEvent {
	e := NewDeckEvent(eventType, deckID)
	e.CardID = &cardID
	return e
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *DeckEvent) error
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *DeckEvent) error
}
