package domain

import (
	"strings"
)

// MaxDeckNameLength is the maximum number of characters in a deck name.
const MaxDeckNameLength = 200

// Deck is a named, ordered collection of cards. A deck exclusively owns its cards.
type Deck struct {
	ID    int64  `json:"id"    yaml:"id"`
	Name  string `json:"name"  yaml:"name"`
	Cards []Card `json:"cards" yaml:"cards"`
}

// DeckPayload carries the editable fields of a deck.
type DeckPayload struct {
	Name string `json:"name"`
}

// Normalize trims surrounding whitespace from the deck name.
func (p DeckPayload) Normalize() DeckPayload {
	return DeckPayload{Name: strings.TrimSpace(p.Name)}
}

// Validate checks the payload without relying on struct tags.
func (p DeckPayload) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name", "is required", ErrEmptyContent)
	}
	if len([]rune(p.Name)) > MaxDeckNameLength {
		return NewValidationError("name", "is too long", ErrValidation)
	}
	return nil
}

// Clone returns a deep copy of the deck. The copy never shares its card
// slice with the receiver.
func (d Deck) Clone() Deck {
	clone := Deck{ID: d.ID, Name: d.Name}
	if d.Cards != nil {
		clone.Cards = make([]Card, len(d.Cards))
		copy(clone.Cards, d.Cards)
	}
	return clone
}

// FindCard returns the index of the card with the given ID, or -1.
func (d Deck) FindCard(cardID int64) int {
	for i := range d.Cards {
		if d.Cards[i].ID == cardID {
			return i
		}
	}
	return -1
}

// MaxCardID returns the largest card ID in the deck, or -1 for an empty deck.
func (d Deck) MaxCardID() int64 {
	maxID := int64(-1)
	for _, c := range d.Cards {
		if c.ID > maxID {
			maxID = c.ID
		}
	}
	return maxID
}
