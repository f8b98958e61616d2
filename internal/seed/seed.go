// Package seed supplies the decks a store starts with: either the built-in
// sample deck or decks read from a YAML file.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/phrazzld/scry-decks/internal/config"
	"github.com/phrazzld/scry-decks/internal/domain"
)

// ErrInvalidSeed is returned when a seed file cannot be used.
var ErrInvalidSeed = errors.New("invalid seed data")

// File is the layout of a YAML seed file.
type File struct {
	Decks []domain.Deck `yaml:"decks"`
}

// DefaultDecks returns the built-in sample data: one deck with three cards.
func DefaultDecks() []domain.Deck {
	return []domain.Deck{
		{
			ID:   0,
			Name: "first deck",
			Cards: []domain.Card{
				{ID: 0, Front: "then the bird got together", Back: "and made a beeline to the south"},
				{ID: 1, Front: "ask the birds and the trees", Back: "la de da, de da de dum, ti's autumn"},
				{ID: 2, Front: "it wouldn't be make believe", Back: "if you believed in me"},
			},
		},
	}
}

// Load returns the initial decks for cfg. A disabled seed yields no decks;
// an enabled seed without a file yields DefaultDecks.
func Load(cfg config.SeedConfig) ([]domain.Deck, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.File == "" {
		return DefaultDecks(), nil
	}
	return LoadFile(cfg.File)
}

// LoadFile reads decks from a YAML seed file.
func LoadFile(path string) ([]domain.Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	decks, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return decks, nil
}

// Parse decodes and validates YAML seed data. Unknown fields are rejected.
func Parse(data []byte) ([]domain.Deck, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	if err := Validate(f.Decks); err != nil {
		return nil, err
	}
	return f.Decks, nil
}

// Validate checks that deck IDs are unique and non-negative, card IDs are
// unique and non-negative within their deck, and every name and card side
// passes domain validation.
func Validate(decks []domain.Deck) error {
	deckIDs := make(map[int64]bool, len(decks))
	for _, d := range decks {
		if d.ID < 0 {
			return fmt.Errorf("%w: deck ID %d is negative", ErrInvalidSeed, d.ID)
		}
		if deckIDs[d.ID] {
			return fmt.Errorf("%w: duplicate deck ID %d", ErrInvalidSeed, d.ID)
		}
		deckIDs[d.ID] = true

		if err := (domain.DeckPayload{Name: d.Name}).Validate(); err != nil {
			return fmt.Errorf("%w: deck %d: %w", ErrInvalidSeed, d.ID, err)
		}

		cardIDs := make(map[int64]bool, len(d.Cards))
		for _, c := range d.Cards {
			if c.ID < 0 {
				return fmt.Errorf("%w: card ID %d in deck %d is negative", ErrInvalidSeed, c.ID, d.ID)
			}
			if cardIDs[c.ID] {
				return fmt.Errorf("%w: duplicate card ID %d in deck %d", ErrInvalidSeed, c.ID, d.ID)
			}
			cardIDs[c.ID] = true

			payload := domain.CardPayload{Front: c.Front, Back: c.Back}
			if err := payload.Validate(); err != nil {
				return fmt.Errorf("%w: deck %d card %d: %w", ErrInvalidSeed, d.ID, c.ID, err)
			}
		}
	}
	return nil
}
