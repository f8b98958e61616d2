// Package storetest holds behavioural tests that every store.DeckStore
// implementation must pass.
package storetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/seed"
	"github.com/phrazzld/scry-decks/internal/store"
)

// Factory returns a fresh store populated with the initial decks.
type Factory func(t *testing.T, initial []domain.Deck) store.DeckStore

// twoDecks is the default seed plus a second deck whose only card shares
// an id with a card of the first.
func twoDecks() []domain.Deck {
	return append(seed.DefaultDecks(), domain.Deck{
		ID:    1,
		Name:  "second deck",
		Cards: []domain.Card{{ID: 0, Front: "second front", Back: "second back"}},
	})
}

// RunDeckStoreTests runs the shared DeckStore behaviour against stores
// produced by newStore. Each subtest gets its own store.
func RunDeckStoreTests(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("ListDecks returns seeded decks", func(t *testing.T) {
		s := newStore(t, seed.DefaultDecks())
		decks, err := s.ListDecks(context.Background())
		require.NoError(t, err)
		if diff := cmp.Diff(seed.DefaultDecks(), decks); diff != "" {
			t.Errorf("decks mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ListDecks on empty store", func(t *testing.T) {
		s := newStore(t, nil)
		decks, err := s.ListDecks(context.Background())
		require.NoError(t, err)
		assert.Empty(t, decks)
	})

	t.Run("GetDeck", func(t *testing.T) {
		s := newStore(t, seed.DefaultDecks())
		ctx := context.Background()

		deck, err := s.GetDeck(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, "first deck", deck.Name)
		assert.Len(t, deck.Cards, 3)

		_, err = s.GetDeck(ctx, 42)
		assert.ErrorIs(t, err, store.ErrDeckNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})

	t.Run("GetCard", func(t *testing.T) {
		s := newStore(t, seed.DefaultDecks())
		ctx := context.Background()

		card, err := s.GetCard(ctx, 0, 1)
		require.NoError(t, err)
		assert.Equal(t, seed.DefaultDecks()[0].Cards[1], card)

		_, err = s.GetCard(ctx, 0, 99)
		assert.ErrorIs(t, err, store.ErrCardNotFound)

		_, err = s.GetCard(ctx, 42, 0)
		assert.ErrorIs(t, err, store.ErrDeckNotFound)
	})

	t.Run("ListCards", func(t *testing.T) {
		s := newStore(t, seed.DefaultDecks())
		ctx := context.Background()

		cards, err := s.ListCards(ctx, 0)
		require.NoError(t, err)
		if diff := cmp.Diff(seed.DefaultDecks()[0].Cards, cards); diff != "" {
			t.Errorf("cards mismatch (-want +got):\n%s", diff)
		}

		_, err = s.ListCards(ctx, 42)
		assert.ErrorIs(t, err, store.ErrDeckNotFound)
	})

	t.Run("InsertCard then GetCard", func(t *testing.T) {
		s := newStore(t, seed.DefaultDecks())
		ctx := context.Background()

		card, err := s.InsertCard(ctx, 0, domain.CardPayload{Front: "Q", Back: "A"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), card.ID)

		got, err := s.GetCard(ctx, 0, card.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.Card{ID: 3, Front: "Q", Back: "A"}, got)

		cards, err := s.ListCards(ctx, 0)
		require.NoError(t, err)
		require.Len(t, cards, 4)
		assert.Equal(t, card, cards[3], "new card is appended last")
	})

	t.Run("InsertCard into missing deck", func(t *testing.T) {
		s := newStore(t, seed.DefaultDecks())
		_, err := s.InsertCard(context.Background(), 42, domain.CardPayload{Front: "Q", Back: "A"})
		assert.ErrorIs(t, err, store.ErrDeckNotFound)
	})

	t.Run("InsertCard rejects invalid payload", func(t *testing.T) {
		s := newStore(t, seed.DefaultDecks())
		_, err := s.InsertCard(context.Background(), 0, domain.CardPayload{Front: "", Back: "A"})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.ErrorIs(t, err, domain.ErrEmptyContent)
	})

	t.Run("InsertCard into empty deck starts at zero", func(t *testing.T) {
		s := newStore(t, []domain.Deck{{ID: 5, Name: "empty"}})
		card, err := s.InsertCard(context.Background(), 5, domain.CardPayload{Front: "Q", Back: "A"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), card.ID)
	})

	t.Run("EditCard", func(t *testing.T) {
		s := newStore(t, seed.DefaultDecks())
		ctx := context.Background()

		card, err := s.EditCard(ctx, 0, 2, domain.CardPayload{Front: "new front", Back: "new back"})
		require.NoError(t, err)
		assert.Equal(t, domain.Card{ID: 2, Front: "new front", Back: "new back"}, card)

		got, err := s.GetCard(ctx, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, card, got)

		_, err = s.EditCard(ctx, 0, 99, domain.CardPayload{Front: "x", Back: "y"})
		assert.ErrorIs(t, err, store.ErrCardNotFound)

		_, err = s.EditCard(ctx, 42, 0, domain.CardPayload{Front: "x", Back: "y"})
		assert.ErrorIs(t, err, store.ErrDeckNotFound)
	})

	t.Run("DeleteCard keeps remaining ids stable", func(t *testing.T) {
		s := newStore(t, seed.DefaultDecks())
		ctx := context.Background()

		removed, err := s.DeleteCard(ctx, 0, 1)
		require.NoError(t, err)
		assert.Equal(t, seed.DefaultDecks()[0].Cards[1], removed)

		deck, err := s.GetDeck(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, deck.Cards, 2)

		_, err = s.GetCard(ctx, 0, 1)
		assert.ErrorIs(t, err, store.ErrCardNotFound)

		card, err := s.GetCard(ctx, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, "it wouldn't be make believe", card.Front)

		inserted, err := s.InsertCard(ctx, 0, domain.CardPayload{Front: "Q", Back: "A"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), inserted.ID)

		_, err = s.DeleteCard(ctx, 0, 1)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
		_, err = s.DeleteCard(ctx, 42, 0)
		assert.ErrorIs(t, err, store.ErrDeckNotFound)
	})

	t.Run("card ids are not reused after deleting the last card", func(t *testing.T) {
		s := newStore(t, seed.DefaultDecks())
		ctx := context.Background()

		_, err := s.DeleteCard(ctx, 0, 2)
		require.NoError(t, err)

		card, err := s.InsertCard(ctx, 0, domain.CardPayload{Front: "Q", Back: "A"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), card.ID)
	})

	t.Run("deck lifecycle", func(t *testing.T) {
		s := newStore(t, seed.DefaultDecks())
		ctx := context.Background()

		deck, err := s.InsertDeck(ctx, domain.DeckPayload{Name: "second"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), deck.ID)
		assert.Equal(t, "second", deck.Name)
		assert.Empty(t, deck.Cards)

		_, err = s.InsertCard(ctx, deck.ID, domain.CardPayload{Front: "Q", Back: "A"})
		require.NoError(t, err)

		renamed, err := s.EditDeck(ctx, deck.ID, domain.DeckPayload{Name: "renamed"})
		require.NoError(t, err)
		assert.Equal(t, "renamed", renamed.Name)
		assert.Len(t, renamed.Cards, 1)

		removed, err := s.DeleteDeck(ctx, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", removed.Name)
		assert.Len(t, removed.Cards, 1)

		_, err = s.GetDeck(ctx, deck.ID)
		assert.ErrorIs(t, err, store.ErrDeckNotFound)
		_, err = s.GetCard(ctx, deck.ID, 0)
		assert.ErrorIs(t, err, store.ErrDeckNotFound)

		// The newest deck was deleted; its ID is still not reused.
		next, err := s.InsertDeck(ctx, domain.DeckPayload{Name: "third"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), next.ID)

		decks, err := s.ListDecks(ctx)
		require.NoError(t, err)
		require.Len(t, decks, 2)
		assert.Equal(t, int64(0), decks[0].ID)
		assert.Equal(t, int64(2), decks[1].ID)
	})

	t.Run("deck operations on missing deck", func(t *testing.T) {
		s := newStore(t, seed.DefaultDecks())
		ctx := context.Background()

		_, err := s.EditDeck(ctx, 42, domain.DeckPayload{Name: "x"})
		assert.ErrorIs(t, err, store.ErrDeckNotFound)
		_, err = s.DeleteDeck(ctx, 42)
		assert.ErrorIs(t, err, store.ErrDeckNotFound)
	})

	t.Run("card ids are scoped to their deck", func(t *testing.T) {
		s := newStore(t, twoDecks())
		ctx := context.Background()
		payload := domain.CardPayload{Front: "x", Back: "y"}

		// Card 2 exists in deck 0 but not in deck 1.
		_, err := s.GetCard(ctx, 1, 2)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
		_, err = s.EditCard(ctx, 1, 2, payload)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
		_, err = s.DeleteCard(ctx, 1, 2)
		assert.ErrorIs(t, err, store.ErrCardNotFound)

		// Card 0 exists in both; each deck sees only its own.
		first, err := s.GetCard(ctx, 0, 0)
		require.NoError(t, err)
		second, err := s.GetCard(ctx, 1, 0)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		_, err = s.DeleteCard(ctx, 1, 0)
		require.NoError(t, err)
		got, err := s.GetCard(ctx, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, first, got)

		// Each deck keeps its own counter.
		card, err := s.InsertCard(ctx, 1, payload)
		require.NoError(t, err)
		assert.Equal(t, int64(1), card.ID)
	})

	t.Run("failed operations leave the store unchanged", func(t *testing.T) {
		s := newStore(t, twoDecks())
		ctx := context.Background()
		payload := domain.CardPayload{Front: "x", Back: "y"}

		before, err := s.ListDecks(ctx)
		require.NoError(t, err)

		failures := map[string]func() error{
			"InsertCard missing deck": func() error { _, err := s.InsertCard(ctx, 42, payload); return err },
			"EditCard missing deck":   func() error { _, err := s.EditCard(ctx, 42, 0, payload); return err },
			"EditCard missing card":   func() error { _, err := s.EditCard(ctx, 1, 7, payload); return err },
			"DeleteCard missing deck": func() error { _, err := s.DeleteCard(ctx, 42, 0); return err },
			"DeleteCard missing card": func() error { _, err := s.DeleteCard(ctx, 0, 99); return err },
			"EditDeck missing deck": func() error {
				_, err := s.EditDeck(ctx, 42, domain.DeckPayload{Name: "x"})
				return err
			},
			"DeleteDeck missing deck": func() error { _, err := s.DeleteDeck(ctx, 42); return err },
			"InsertCard invalid payload": func() error {
				_, err := s.InsertCard(ctx, 0, domain.CardPayload{Back: "y"})
				return err
			},
		}
		for name, op := range failures {
			assert.Error(t, op(), name)
		}

		after, err := s.ListDecks(ctx)
		require.NoError(t, err)
		if diff := cmp.Diff(before, after); diff != "" {
			t.Errorf("store changed after failed operations (-before +after):\n%s", diff)
		}

		// A failed insert does not consume a card id.
		card, err := s.InsertCard(ctx, 0, payload)
		require.NoError(t, err)
		assert.Equal(t, int64(3), card.ID)
	})

	t.Run("EditCard is idempotent", func(t *testing.T) {
		s := newStore(t, twoDecks())
		ctx := context.Background()
		payload := domain.CardPayload{Front: "same front", Back: "same back"}

		first, err := s.EditCard(ctx, 0, 1, payload)
		require.NoError(t, err)
		once, err := s.ListDecks(ctx)
		require.NoError(t, err)

		second, err := s.EditCard(ctx, 0, 1, payload)
		require.NoError(t, err)
		twice, err := s.ListDecks(ctx)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("second identical edit changed the store (-once +twice):\n%s", diff)
		}
	})

	t.Run("deck ids continue above seeded ids", func(t *testing.T) {
		s := newStore(t, []domain.Deck{{ID: 7, Name: "seven"}})
		deck, err := s.InsertDeck(context.Background(), domain.DeckPayload{Name: "next"})
		require.NoError(t, err)
		assert.Equal(t, int64(8), deck.ID)
	})

	t.Run("InsertDeck rejects invalid payload", func(t *testing.T) {
		s := newStore(t, nil)
		_, err := s.InsertDeck(context.Background(), domain.DeckPayload{Name: "  "})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("returned values are copies", func(t *testing.T) {
		s := newStore(t, seed.DefaultDecks())
		ctx := context.Background()

		deck, err := s.GetDeck(ctx, 0)
		require.NoError(t, err)
		deck.Name = "mutated"
		deck.Cards[0].Front = "mutated"
		deck.Cards = append(deck.Cards[:0], deck.Cards[1:]...)

		cards, err := s.ListCards(ctx, 0)
		require.NoError(t, err)
		cards[1].Back = "mutated"

		again, err := s.GetDeck(ctx, 0)
		require.NoError(t, err)
		if diff := cmp.Diff(seed.DefaultDecks()[0], again); diff != "" {
			t.Errorf("store was modified through a returned value (-want +got):\n%s", diff)
		}
	})

	t.Run("concurrent inserts get distinct ids", func(t *testing.T) {
		s := newStore(t, seed.DefaultDecks())
		ctx := context.Background()
		const workers = 20

		ids := make([]int64, workers)
		var g errgroup.Group
		for i := 0; i < workers; i++ {
			i := i
			g.Go(func() error {
				card, err := s.InsertCard(ctx, 0, domain.CardPayload{
					Front: fmt.Sprintf("front %d", i),
					Back:  fmt.Sprintf("back %d", i),
				})
				if err != nil {
					return err
				}
				ids[i] = card.ID
				return nil
			})
		}
		require.NoError(t, g.Wait())

		seen := make(map[int64]bool, workers)
		for _, id := range ids {
			assert.False(t, seen[id], "card ID %d assigned twice", id)
			assert.GreaterOrEqual(t, id, int64(3))
			seen[id] = true
		}

		cards, err := s.ListCards(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, cards, 3+workers)
	})
}
