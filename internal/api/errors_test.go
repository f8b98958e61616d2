package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-decks/internal/api/shared"
	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/service"
	"github.com/phrazzld/scry-decks/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "nil error",
			err:            nil,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "deck not found",
			err:            store.ErrDeckNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "card not found wrapped by the service",
			err:            service.NewDeckServiceError("get_card", "failed to get card", store.ErrCardNotFound),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid path id",
			err:            domain.NewValidationError("deckID", "has invalid format", domain.ErrInvalidID),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed form",
			err:            fmt.Errorf("%w: bad escape", shared.ErrMalformedForm),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty content",
			err:            domain.NewValidationError("front", "is required", domain.ErrEmptyContent),
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "too long",
			err:            domain.NewValidationError("name", "is too long", domain.ErrValidation),
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "invalid entity from the store",
			err:            fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrEmptyContent),
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "store unavailable",
			err:            store.NewStoreError("deck", "insert", "store is poisoned", store.ErrStoreUnavailable),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "unknown error",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStatus, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, "An unexpected error occurred"},
		{"deck not found", fmt.Errorf("lookup: %w", store.ErrDeckNotFound), "Deck not found"},
		{"card not found", store.ErrCardNotFound, "Card not found"},
		{"generic not found", store.ErrNotFound, "Not found"},
		{"invalid id", domain.NewValidationError("cardID", "has invalid format", domain.ErrInvalidID), "Invalid ID"},
		{"field error", domain.NewValidationError("front", "is required", domain.ErrEmptyContent), "Invalid front: is required"},
		{"invalid entity", store.ErrInvalidEntity, "Invalid deck or card data"},
		{"unavailable", store.ErrStoreUnavailable, "The deck store is unavailable"},
		{"leaky error", errors.New("pq: password=hunter2 at 10.0.0.1:5432"), "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Run("required field", func(t *testing.T) {
		err := shared.ValidateRequest(&shared.CardForm{Front: "q"})
		require.Error(t, err)
		assert.Equal(t, "Invalid back: is required", SanitizeValidationError(err))
		assert.Equal(t, http.StatusUnprocessableEntity, MapErrorToStatusCode(err))
		assert.Equal(t, "Invalid back: is required", GetSafeErrorMessage(err))
	})

	t.Run("max length", func(t *testing.T) {
		long := make([]rune, 201)
		for i := range long {
			long[i] = 'x'
		}
		err := shared.ValidateRequest(&shared.DeckForm{Name: string(long)})
		require.Error(t, err)
		assert.Equal(t, "Invalid name: must be at most 200 characters", SanitizeValidationError(err))
	})

	t.Run("not a validation error", func(t *testing.T) {
		assert.Equal(t, "Invalid request format", SanitizeValidationError(errors.New("x")))
	})
}
