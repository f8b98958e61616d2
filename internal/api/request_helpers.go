package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/scry-decks/internal/domain"
)

// Path parameter names.
const (
	deckIDParam = "deckID"
	cardIDParam = "cardID"
)

// getPathID extracts a non-negative integer ID from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required", domain.ErrInvalidID)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id < 0 {
		return 0, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// getDeckAndCardIDs extracts both path IDs of a card route.
func getDeckAndCardIDs(r *http.Request) (int64, int64, error) {
	deckID, err := getPathID(r, deckIDParam)
	if err != nil {
		return 0, 0, err
	}
	cardID, err := getPathID(r, cardIDParam)
	if err != nil {
		return 0, 0, err
	}
	return deckID, cardID, nil
}
