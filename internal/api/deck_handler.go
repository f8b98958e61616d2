package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/phrazzld/scry-decks/internal/api/shared"
	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/platform/logger"
	"github.com/phrazzld/scry-decks/internal/service"
	"github.com/phrazzld/scry-decks/internal/web"
)

// QRCodeSize is the edge length in pixels of deck QR codes.
const QRCodeSize = 256

// DeckHandler handles the home page and deck routes.
type DeckHandler struct {
	decks     service.DeckService
	responder *shared.Responder
	publicURL string
	logger    *slog.Logger
}

// NewDeckHandler creates a new DeckHandler. publicURL is the base of the
// links encoded in deck QR codes.
func NewDeckHandler(
	decks service.DeckService,
	responder *shared.Responder,
	publicURL string,
	logger *slog.Logger,
) *DeckHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckHandler{
		decks:     decks,
		responder: responder,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger.With(slog.String("component", "deck_handler")),
	}
}

// Home renders the full page with every deck. A valid ?deck= query opens
// that deck below the list; an unknown one is ignored.
func (h *DeckHandler) Home(w http.ResponseWriter, r *http.Request) {
	decks, err := h.decks.ListDecks(r.Context())
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	view := web.HomeView{Decks: decks, MaxDeckName: domain.MaxDeckNameLength}
	if raw := r.URL.Query().Get("deck"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			for i := range decks {
				if decks[i].ID == id {
					view.Selected = &decks[i]
					break
				}
			}
		}
	}

	h.responder.RespondWithHTML(w, r, http.StatusOK, web.PageTemplate, view)
}

// CreateDeck handles POST /decks
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var form shared.DeckForm
	if err := shared.DecodeForm(w, r, &form); err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&form); err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	deck, err := h.decks.CreateDeck(r.Context(), domain.DeckPayload{Name: form.Name})
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	h.responder.RespondWithHTML(w, r, http.StatusOK, web.DeckListItemTemplate, deck)
}

// GetDeck handles GET /decks/{deckID}
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	h.renderDeck(w, r, web.DeckTemplate)
}

// EditDeckForm handles GET /decks/{deckID}/edit
func (h *DeckHandler) EditDeckForm(w http.ResponseWriter, r *http.Request) {
	h.renderDeck(w, r, web.DeckEditTemplate)
}

func (h *DeckHandler) renderDeck(w http.ResponseWriter, r *http.Request, name string) {
	deckID, err := getPathID(r, deckIDParam)
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	deck, err := h.decks.GetDeck(r.Context(), deckID)
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	h.responder.RespondWithHTML(w, r, http.StatusOK, name, deck)
}

// RenameDeck handles PUT /decks/{deckID}
func (h *DeckHandler) RenameDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := getPathID(r, deckIDParam)
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	var form shared.DeckForm
	if err := shared.DecodeForm(w, r, &form); err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&form); err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	deck, err := h.decks.RenameDeck(r.Context(), deckID, domain.DeckPayload{Name: form.Name})
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	h.responder.RespondWithHTML(w, r, http.StatusOK, web.DeckRenamedTemplate, deck)
}

// DeleteDeck handles DELETE /decks/{deckID}
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := getPathID(r, deckIDParam)
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	deck, err := h.decks.DeleteDeck(r.Context(), deckID)
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	// The swap target receives nothing; the list entry is removed out of band.
	h.responder.RespondWithHTML(w, r, http.StatusOK, web.DeckDeletedTemplate, deck)
}

// DeckQRCode handles GET /decks/{deckID}/qr.png. The code links to the
// home page with the deck opened.
func (h *DeckHandler) DeckQRCode(w http.ResponseWriter, r *http.Request) {
	deckID, err := getPathID(r, deckIDParam)
	if err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	if _, err := h.decks.GetDeck(r.Context(), deckID); err != nil {
		HandleAPIError(h.responder, w, r, err, "")
		return
	}

	png, err := qrcode.Encode(h.DeckURL(deckID), qrcode.Medium, QRCodeSize)
	if err != nil {
		HandleAPIError(h.responder, w, r, fmt.Errorf("failed to encode QR code: %w", err), "")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("failed to write QR code",
			slog.String("error", err.Error()))
	}
}

// DeckURL returns the public link that opens the given deck.
func (h *DeckHandler) DeckURL(deckID int64) string {
	return fmt.Sprintf("%s/?deck=%d", h.publicURL, deckID)
}
