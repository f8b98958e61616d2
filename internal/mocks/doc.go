// Package mocks provides shared mock implementations for testing.
//
// Each mock has a function field per interface method. A nil field falls
// back to DefaultError and the zero value, so tests only set what they use:
//
//	deckStore := &mocks.MockDeckStore{
//	    GetDeckFn: func(ctx context.Context, deckID int64) (domain.Deck, error) {
//	        return domain.Deck{}, store.ErrDeckNotFound
//	    },
//	}
package mocks
