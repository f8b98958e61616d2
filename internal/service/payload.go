package service

import (
	"github.com/phrazzld/scry-decks/internal/domain"
)

// Card and deck text is stored as submitted, apart from trimming. Templates
// escape it on output.

// cleanCard trims a card payload, then validates it.
func cleanCard(p domain.CardPayload) (domain.CardPayload, error) {
	p = p.Normalize()
	return p, p.Validate()
}

// cleanDeck trims a deck payload, then validates it.
func cleanDeck(p domain.DeckPayload) (domain.DeckPayload, error) {
	p = p.Normalize()
	return p, p.Validate()
}
