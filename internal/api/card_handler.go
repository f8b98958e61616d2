package api

import (
	"context"
	"net/http"

	"github.com/phrazzld/scry-decks/internal/api/shared"
	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/service"
	"github.com/phrazzld/scry-decks/internal/web"
)

// CardHandler handles the card routes nested under a deck.
type CardHandler struct {
	decks     service.DeckService
	responder *shared.Responder
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(decks service.DeckService, responder *shared.Responder) *CardHandler {
	return &CardHandler{decks: decks, responder: responder}
}

// ListCards handles GET /decks/{deckID}/cards
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	deckID, err := getPathID(r, deckIDParam)
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	cards, err := h.decks.ListCards(r.Context(), deckID)
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	h.responder.RespondWithHTML(w, r, http.StatusOK, web.CardsTemplate,
		web.CardsView{DeckID: deckID, Cards: cards})
}

// CreateCard handles POST /decks/{deckID}/cards
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	deckID, err := getPathID(r, deckIDParam)
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	payload, ok := h.decodeCard(w, r)
	if !ok {
		return
	}

	card, err := h.decks.CreateCard(r.Context(), deckID, payload)
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	h.responder.RespondWithHTML(w, r, http.StatusOK, web.CardCreatedTemplate,
		web.CardView{DeckID: deckID, Card: card, Deck: h.listedDeck(r.Context(), deckID)})
}

// GetCard handles GET /decks/{deckID}/cards/{cardID}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	h.renderCard(w, r, web.CardTemplate)
}

// EditCardForm handles GET /decks/{deckID}/cards/{cardID}/edit
func (h *CardHandler) EditCardForm(w http.ResponseWriter, r *http.Request) {
	h.renderCard(w, r, web.CardEditTemplate)
}

func (h *CardHandler) renderCard(w http.ResponseWriter, r *http.Request, name string) {
	deckID, cardID, err := getDeckAndCardIDs(r)
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	card, err := h.decks.GetCard(r.Context(), deckID, cardID)
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	h.responder.RespondWithHTML(w, r, http.StatusOK, name, web.CardView{DeckID: deckID, Card: card})
}

// UpdateCard handles PUT /decks/{deckID}/cards/{cardID}
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	deckID, cardID, err := getDeckAndCardIDs(r)
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	payload, ok := h.decodeCard(w, r)
	if !ok {
		return
	}

	card, err := h.decks.UpdateCard(r.Context(), deckID, cardID, payload)
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	h.responder.RespondWithHTML(w, r, http.StatusOK, web.CardTemplate,
		web.CardView{DeckID: deckID, Card: card})
}

// DeleteCard handles DELETE /decks/{deckID}/cards/{cardID}
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	deckID, cardID, err := getDeckAndCardIDs(r)
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	card, err := h.decks.DeleteCard(r.Context(), deckID, cardID)
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	h.responder.RespondWithHTML(w, r, http.StatusOK, web.CardDeletedTemplate,
		web.CardView{DeckID: deckID, Card: card, Deck: h.listedDeck(r.Context(), deckID)})
}

// listedDeck reloads a deck after one of its cards changed, so its entry in
// the home list shows the new card count. It returns nil when the deck can
// no longer be read; the card response is still sent.
func (h *CardHandler) listedDeck(ctx context.Context, deckID int64) *domain.Deck {
	deck, err := h.decks.GetDeck(ctx, deckID)
	if err != nil {
		return nil
	}
	return &deck
}

// decodeCard parses and validates the card form. It writes the error
// response itself and reports whether the caller should continue.
func (h *CardHandler) decodeCard(w http.ResponseWriter, r *http.Request) (domain.CardPayload, bool) {
	var form shared.CardForm
	if err := shared.DecodeForm(w, r, &form); err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return domain.CardPayload{}, false
	}
	if err := shared.ValidateRequest(&form); err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return domain.CardPayload{}, false
	}
	return domain.CardPayload{Front: form.Front, Back: form.Back}, true
}
