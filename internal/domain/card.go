package domain

import (
	"strings"
)

// Card-specific validation limits.
const (
	// MaxCardSideLength is the maximum number of characters on either side of a card.
	MaxCardSideLength = 4096
)

// Card is a single flashcard owned by exactly one Deck.
// Its ID is unique within the owning deck only.
type Card struct {
	ID    int64  `json:"id"    yaml:"id"`
	Front string `json:"front" yaml:"front"`
	Back  string `json:"back"  yaml:"back"`
}

// CardPayload carries the editable fields of a card, as submitted by a client.
type CardPayload struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Normalize trims surrounding whitespace from both sides of the payload.
func (p CardPayload) Normalize() CardPayload {
	return CardPayload{
		Front: strings.TrimSpace(p.Front),
		Back:  strings.TrimSpace(p.Back),
	}
}

// Validate checks the payload without relying on struct tags, so that
// stores can guard their inputs without a validator instance.
func (p CardPayload) Validate() error {
	if strings.TrimSpace(p.Front) == "" {
		return NewValidationError("front", "is required", ErrEmptyContent)
	}
	if strings.TrimSpace(p.Back) == "" {
		return NewValidationError("back", "is required", ErrEmptyContent)
	}
	if len([]rune(p.Front)) > MaxCardSideLength {
		return NewValidationError("front", "is too long", ErrValidation)
	}
	if len([]rune(p.Back)) > MaxCardSideLength {
		return NewValidationError("back", "is too long", ErrValidation)
	}
	return nil
}

// Apply copies the payload's fields onto the card.
func (c *Card) Apply(p CardPayload) {
	c.Front = p.Front
	c.Back = p.Back
}
