package api

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the page, deck and card routes on r.
func RegisterRoutes(r chi.Router, decks *DeckHandler, cards *CardHandler) {
	r.Get("/", decks.Home)

	r.Route("/decks", func(r chi.Router) {
		r.Post("/", decks.CreateDeck)

		r.Route("/{deckID}", func(r chi.Router) {
			r.Get("/", decks.GetDeck)
			r.Put("/", decks.RenameDeck)
			r.Delete("/", decks.DeleteDeck)
			r.Get("/edit", decks.EditDeckForm)
			r.Get("/qr.png", decks.DeckQRCode)

			r.Route("/cards", func(r chi.Router) {
				r.Get("/", cards.ListCards)
				r.Post("/", cards.CreateCard)
				r.Get("/{cardID}", cards.GetCard)
				r.Put("/{cardID}", cards.UpdateCard)
				r.Delete("/{cardID}", cards.DeleteCard)
				r.Get("/{cardID}/edit", cards.EditCardForm)
			})
		})
	})
}
