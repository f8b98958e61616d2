package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/platform/logger"
	"github.com/phrazzld/scry-decks/internal/seed"
	"github.com/phrazzld/scry-decks/internal/store"
	"github.com/phrazzld/scry-decks/internal/store/storetest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore(t *testing.T, initial []domain.Deck) *DeckStore {
	t.Helper()
	log, _ := logger.NewBufferLogger()
	s, err := NewDeckStore(initial, log)
	require.NoError(t, err)
	return s
}

func TestDeckStoreContract(t *testing.T) {
	storetest.RunDeckStoreTests(t, func(t *testing.T, initial []domain.Deck) store.DeckStore {
		return newTestStore(t, initial)
	})
}

func TestNewDeckStoreRejectsBadSeeds(t *testing.T) {
	tests := []struct {
		name    string
		initial []domain.Deck
	}{
		{name: "duplicate deck ids", initial: []domain.Deck{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}}},
		{name: "negative deck id", initial: []domain.Deck{{ID: -1, Name: "a"}}},
		{
			name: "duplicate card ids",
			initial: []domain.Deck{{ID: 1, Name: "a", Cards: []domain.Card{
				{ID: 3, Front: "x", Back: "y"},
				{ID: 3, Front: "z", Back: "w"},
			}}},
		},
		{
			name:    "negative card id",
			initial: []domain.Deck{{ID: 1, Name: "a", Cards: []domain.Card{{ID: -2, Front: "x", Back: "y"}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDeckStore(tt.initial, nil)
			assert.ErrorIs(t, err, store.ErrInvalidEntity)
		})
	}
}

func TestNewDeckStoreCopiesInitialDecks(t *testing.T) {
	initial := seed.DefaultDecks()
	s := newTestStore(t, initial)

	initial[0].Name = "changed"
	initial[0].Cards[0].Front = "changed"

	deck, err := s.GetDeck(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "first deck", deck.Name)
	assert.Equal(t, "then the bird got together", deck.Cards[0].Front)
}

func TestNewDeckStoreCounters(t *testing.T) {
	s := newTestStore(t, []domain.Deck{
		{ID: 3, Name: "a", Cards: []domain.Card{{ID: 10, Front: "x", Back: "y"}, {ID: 4, Front: "z", Back: "w"}}},
		{ID: 1, Name: "b"},
	})
	ctx := context.Background()

	card, err := s.InsertCard(ctx, 3, domain.CardPayload{Front: "q", Back: "a"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), card.ID)

	deck, err := s.InsertDeck(ctx, domain.DeckPayload{Name: "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), deck.ID)

	// Seed order is kept; new decks are appended.
	decks, err := s.ListDecks(ctx)
	require.NoError(t, err)
	require.Len(t, decks, 3)
	assert.Equal(t, []int64{3, 1, 4}, []int64{decks[0].ID, decks[1].ID, decks[2].ID})
}

func TestDeckStorePoisoning(t *testing.T) {
	mutations := map[string]func(s *DeckStore) error{
		"insert_card": func(s *DeckStore) error {
			_, err := s.InsertCard(context.Background(), 0, domain.CardPayload{Front: "q", Back: "a"})
			return err
		},
		"edit_card": func(s *DeckStore) error {
			_, err := s.EditCard(context.Background(), 0, 0, domain.CardPayload{Front: "q", Back: "a"})
			return err
		},
		"delete_card": func(s *DeckStore) error {
			_, err := s.DeleteCard(context.Background(), 0, 0)
			return err
		},
		"insert_deck": func(s *DeckStore) error {
			_, err := s.InsertDeck(context.Background(), domain.DeckPayload{Name: "d"})
			return err
		},
		"edit_deck": func(s *DeckStore) error {
			_, err := s.EditDeck(context.Background(), 0, domain.DeckPayload{Name: "d"})
			return err
		},
		"delete_deck": func(s *DeckStore) error {
			_, err := s.DeleteDeck(context.Background(), 0)
			return err
		},
	}

	for op, mutate := range mutations {
		t.Run(op, func(t *testing.T) {
			log, buf := logger.NewBufferLogger()
			s, err := NewDeckStore(seed.DefaultDecks(), log)
			require.NoError(t, err)

			s.beforeMutate = func(got string) {
				if got == op {
					panic("simulated crash")
				}
			}

			err = mutate(s)
			require.Error(t, err)
			assert.ErrorIs(t, err, store.ErrStoreUnavailable)
			assert.True(t, store.IsUnavailableError(err))
			assert.Contains(t, buf.String(), "simulated crash")

			// Every later call fails too, reads included.
			s.beforeMutate = nil
			_, err = s.ListDecks(context.Background())
			assert.ErrorIs(t, err, store.ErrStoreUnavailable)
			_, err = s.GetDeck(context.Background(), 0)
			assert.ErrorIs(t, err, store.ErrStoreUnavailable)
			_, err = s.GetCard(context.Background(), 0, 0)
			assert.ErrorIs(t, err, store.ErrStoreUnavailable)
			_, err = s.ListCards(context.Background(), 0)
			assert.ErrorIs(t, err, store.ErrStoreUnavailable)
			assert.ErrorIs(t, mutate(s), store.ErrStoreUnavailable)

			// The lock was released on the panic path.
			locked := s.mu.TryLock()
			require.True(t, locked)
			s.mu.Unlock()
		})
	}
}

func TestDeckStoreNotFoundDoesNotPoison(t *testing.T) {
	s := newTestStore(t, seed.DefaultDecks())
	ctx := context.Background()

	_, err := s.GetCard(ctx, 0, 99)
	require.ErrorIs(t, err, store.ErrCardNotFound)

	deck, err := s.GetDeck(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, deck.Cards, 3)
}

func TestInsertCardLogging(t *testing.T) {
	log, buf := logger.NewBufferLogger()
	s, err := NewDeckStore(seed.DefaultDecks(), log)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.InsertCard(ctx, 42, domain.CardPayload{Front: "Q", Back: "A"})
	require.ErrorIs(t, err, store.ErrDeckNotFound)
	_, err = s.InsertCard(ctx, 0, domain.CardPayload{Front: "Q", Back: "A"})
	require.NoError(t, err)

	entries, err := buf.Entries()
	require.NoError(t, err)

	var failed, succeeded map[string]any
	for _, e := range entries {
		if e["operation"] != "insert_card" {
			continue
		}
		if e["msg"] == "store entity not found" {
			failed = e
		} else {
			succeeded = e
		}
	}
	require.NotNil(t, failed)
	require.NotNil(t, succeeded)
	assert.NotContains(t, failed, "card_id")
	assert.Equal(t, float64(42), failed["deck_id"])
	assert.Equal(t, float64(3), succeeded["card_id"])
}

// Readers running alongside writers always see cards in strictly
// increasing ID order, and no insert is lost.
func TestDeckStoreConcurrentReadersAndWriters(t *testing.T) {
	s := newTestStore(t, seed.DefaultDecks())
	ctx := context.Background()
	const writers, inserts = 4, 25

	var wg sync.WaitGroup
	errs := make(chan error, writers*inserts+writers*inserts)

	for w := 0; w < writers; w++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < inserts; i++ {
				if _, err := s.InsertCard(ctx, 0, domain.CardPayload{Front: "f", Back: "b"}); err != nil {
					errs <- err
				}
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < inserts; i++ {
				decks, err := s.ListDecks(ctx)
				if err != nil {
					errs <- err
					continue
				}
				cards := decks[0].Cards
				for j := 1; j < len(cards); j++ {
					if cards[j].ID <= cards[j-1].ID {
						t.Errorf("card IDs out of order: %d after %d", cards[j].ID, cards[j-1].ID)
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}

	cards, err := s.ListCards(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, cards, 3+writers*inserts)
}
