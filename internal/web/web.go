// Package web holds the HTML templates and static assets of the UI and
// renders them. Pages are a full document for the home page and small
// fragments for everything htmx swaps in.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/phrazzld/scry-decks/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Template names.
const (
	PageTemplate         = "page"
	DeckListItemTemplate = "deck_list_item"
	DeckTemplate         = "deck"
	DeckHeaderTemplate   = "deck_header"
	DeckEditTemplate     = "deck_edit"
	DeckRenamedTemplate  = "deck_renamed"
	DeckDeletedTemplate  = "deck_deleted"
	CardsTemplate        = "cards"
	CardTemplate         = "card"
	CardEditTemplate     = "card_edit"
	CardCreatedTemplate  = "card_created"
	CardDeletedTemplate  = "card_deleted"
	ErrorTemplate        = "error"
)

// HomeView is the data for the home page. Selected, when set, is shown
// opened below the deck list.
type HomeView struct {
	Decks       []domain.Deck
	Selected    *domain.Deck
	MaxDeckName int
}

// CardView is a card together with the deck that owns it, which the card
// fragments need to build their URLs. Deck, when set, refreshes the deck's
// entry in the home list after a card is added or removed.
type CardView struct {
	DeckID int64
	Card   domain.Card
	Deck   *domain.Deck
}

// CardsView is the data for a list of cards in one deck.
type CardsView struct {
	DeckID int64
	Cards  []domain.Card
}

// ErrorView is the data for an error fragment.
type ErrorView struct {
	Status  int
	Message string
	TraceID string
}

var funcs = template.FuncMap{
	"cardView": func(deckID int64, c domain.Card) CardView {
		return CardView{DeckID: deckID, Card: c}
	},
	"cardsView": func(deckID int64, cards []domain.Card) CardsView {
		return CardsView{DeckID: deckID, Cards: cards}
	},
	"maxCardSide": func() int { return domain.MaxCardSideLength },
	"maxDeckName": func() int { return domain.MaxDeckNameLength },
}

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the named template and writes it with the given status.
// The template is rendered into a buffer first, so a failed render never
// leaves a partial response behind and the caller can still send an error.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the embedded static assets. Mount it with the URL prefix
// stripped.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The directory is embedded at compile time.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
