package api

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-decks/internal/api/middleware"
	"github.com/phrazzld/scry-decks/internal/api/shared"
	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/mocks"
	"github.com/phrazzld/scry-decks/internal/platform/logger"
	"github.com/phrazzld/scry-decks/internal/platform/memory"
	"github.com/phrazzld/scry-decks/internal/seed"
	"github.com/phrazzld/scry-decks/internal/service"
	"github.com/phrazzld/scry-decks/internal/store"
	"github.com/phrazzld/scry-decks/internal/web"
)

const testPublicURL = "http://decks.example.com/"

// newTestRouter wires the handlers around s the way the server does.
func newTestRouter(t *testing.T, s store.DeckStore) http.Handler {
	t.Helper()

	log, _ := logger.NewBufferLogger()
	svc, err := service.NewDeckService(s, &mocks.RecordingEmitter{}, log)
	require.NoError(t, err)

	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	responder := shared.NewResponder(renderer, log)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	RegisterRoutes(r,
		NewDeckHandler(svc, responder, testPublicURL, log),
		NewCardHandler(svc, responder))
	return r
}

func newSeededRouter(t *testing.T) http.Handler {
	t.Helper()
	s, err := memory.NewDeckStore(seed.DefaultDecks(), nil)
	require.NoError(t, err)
	return newTestRouter(t, s)
}

func do(t *testing.T, h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHome(t *testing.T) {
	h := newSeededRouter(t)

	t.Run("lists decks", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.NotEmpty(t, rec.Header().Get(shared.TraceIDHeader))

		body := rec.Body.String()
		assert.Contains(t, body, "<!doctype html>")
		assert.Contains(t, body, `id="deck-item-0"`)
		assert.Contains(t, body, "3 cards")
		assert.NotContains(t, body, `id="deck-0"`)
	})

	t.Run("opens the selected deck", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/?deck=0", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `id="deck-0"`)
		assert.Contains(t, rec.Body.String(), "then the bird got together")
	})

	t.Run("ignores an unknown selection", func(t *testing.T) {
		for _, q := range []string{"/?deck=99", "/?deck=abc"} {
			rec := do(t, h, http.MethodGet, q, nil)
			require.Equal(t, http.StatusOK, rec.Code, q)
			assert.NotContains(t, rec.Body.String(), `id="deck-0"`, q)
		}
	})
}

func TestDeckRoutes(t *testing.T) {
	h := newSeededRouter(t)

	rec := do(t, h, http.MethodGet, "/decks/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h2>first deck</h2>")
	assert.Contains(t, rec.Body.String(), `id="card-0-2"`)

	rec = do(t, h, http.MethodPost, "/decks", url.Values{"name": {"  spanish <verbs> "}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="deck-item-1"`)
	assert.Contains(t, rec.Body.String(), ">spanish &lt;verbs&gt;</a>")

	rec = do(t, h, http.MethodGet, "/decks/1/edit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hx-put="/decks/1"`)
	assert.Contains(t, rec.Body.String(), `value="spanish &lt;verbs&gt;"`)

	rec = do(t, h, http.MethodPut, "/decks/1", url.Values{"name": {"verbs"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h2>verbs</h2>")
	assert.Contains(t, rec.Body.String(), `<li id="deck-item-1" class="deck-item" hx-swap-oob="true">`)
	assert.Contains(t, rec.Body.String(), ">verbs</a>")

	// Only the out-of-band removal of the list entry is sent.
	rec = do(t, h, http.MethodDelete, "/decks/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `<li id="deck-item-1" hx-swap-oob="delete"></li>`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/decks/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Deck not found")

	// Deck ids are never reused.
	rec = do(t, h, http.MethodPost, "/decks", url.Values{"name": {"again"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="deck-item-2"`)
}

func TestCardRoutes(t *testing.T) {
	h := newSeededRouter(t)

	rec := do(t, h, http.MethodGet, "/decks/0/cards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for i := 0; i < 3; i++ {
		assert.Contains(t, rec.Body.String(), fmt.Sprintf(`id="card-0-%d"`, i))
	}

	rec = do(t, h, http.MethodGet, "/decks/0/cards/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ask the birds and the trees")

	rec = do(t, h, http.MethodGet, "/decks/0/cards/1/edit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hx-put="/decks/0/cards/1"`)

	rec = do(t, h, http.MethodPut, "/decks/0/cards/1", url.Values{"front": {"Q"}, "back": {"A <i>b</i>"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div class="back">A &lt;i&gt;b&lt;/i&gt;</div>`)

	rec = do(t, h, http.MethodDelete, "/decks/0/cards/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `id="card-0-1"`)
	assert.Contains(t, rec.Body.String(), `<li id="deck-item-0" class="deck-item" hx-swap-oob="true">`)
	assert.Contains(t, rec.Body.String(), "2 cards")

	rec = do(t, h, http.MethodGet, "/decks/0/cards/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Card not found")

	rec = do(t, h, http.MethodGet, "/decks/0/cards/2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/decks/0/cards", url.Values{"front": {"Vec<String>"}, "back": {"a<b and c>d"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="card-0-3"`)
	assert.Contains(t, rec.Body.String(), `<div class="front">Vec&lt;String&gt;</div>`)
	assert.Contains(t, rec.Body.String(), `<div class="back">a&lt;b and c&gt;d</div>`)
	assert.Contains(t, rec.Body.String(), "3 cards")
}

func TestDeckQRCode(t *testing.T) {
	h := newSeededRouter(t)

	rec := do(t, h, http.MethodGet, "/decks/0/qr.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, QRCodeSize, img.Bounds().Dx())

	rec = do(t, h, http.MethodGet, "/decks/7/qr.png", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeckURL(t *testing.T) {
	handler := NewDeckHandler(nil, nil, testPublicURL, nil)
	assert.Equal(t, "http://decks.example.com/?deck=4", handler.DeckURL(4))
}

func TestErrorStatusCodes(t *testing.T) {
	h := newSeededRouter(t)

	tests := []struct {
		name   string
		method string
		target string
		form   url.Values
		status int
	}{
		{"unknown deck", http.MethodGet, "/decks/9", nil, http.StatusNotFound},
		{"unknown deck cards", http.MethodGet, "/decks/9/cards", nil, http.StatusNotFound},
		{"card in unknown deck", http.MethodPost, "/decks/9/cards", url.Values{"front": {"a"}, "back": {"b"}}, http.StatusNotFound},
		{"unknown card", http.MethodPut, "/decks/0/cards/9", url.Values{"front": {"a"}, "back": {"b"}}, http.StatusNotFound},
		{"delete unknown card", http.MethodDelete, "/decks/0/cards/9", nil, http.StatusNotFound},
		{"delete unknown deck", http.MethodDelete, "/decks/9", nil, http.StatusNotFound},
		{"non-numeric deck id", http.MethodGet, "/decks/abc", nil, http.StatusBadRequest},
		{"negative deck id", http.MethodGet, "/decks/-1", nil, http.StatusBadRequest},
		{"non-numeric card id", http.MethodGet, "/decks/0/cards/x", nil, http.StatusBadRequest},
		{"overflowing card id", http.MethodDelete, "/decks/0/cards/99999999999999999999", nil, http.StatusBadRequest},
		{"missing back", http.MethodPost, "/decks/0/cards", url.Values{"front": {"a"}}, http.StatusUnprocessableEntity},
		{"blank front", http.MethodPut, "/decks/0/cards/0", url.Values{"front": {"   "}, "back": {"b"}}, http.StatusUnprocessableEntity},
		{"markup only", http.MethodPost, "/decks/0/cards", url.Values{"front": {"<b></b>"}, "back": {"b"}}, http.StatusUnprocessableEntity},
		{"long front", http.MethodPost, "/decks/0/cards", url.Values{"front": {strings.Repeat("x", domain.MaxCardSideLength+1)}, "back": {"b"}}, http.StatusUnprocessableEntity},
		{"empty deck name", http.MethodPost, "/decks", url.Values{"name": {""}}, http.StatusUnprocessableEntity},
		{"long deck name", http.MethodPut, "/decks/0", url.Values{"name": {strings.Repeat("n", domain.MaxDeckNameLength+1)}}, http.StatusUnprocessableEntity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.target, tc.form)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `class="error"`)
			assert.Contains(t, rec.Body.String(), rec.Header().Get(shared.TraceIDHeader))
		})
	}
}

func TestUnavailableStore(t *testing.T) {
	cause := fmt.Errorf("%w: lock poisoned", store.ErrStoreUnavailable)
	h := newTestRouter(t, &mocks.MockDeckStore{DefaultError: cause})

	for _, target := range []string{"/", "/decks/0", "/decks/0/cards", "/decks/0/cards/0"} {
		rec := do(t, h, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "The deck store is unavailable", target)
		assert.NotContains(t, rec.Body.String(), "poisoned", target)
	}
}

func TestUnexpectedStoreError(t *testing.T) {
	h := newTestRouter(t, &mocks.MockDeckStore{
		InsertCardFn: func(ctx context.Context, deckID int64, payload domain.CardPayload) (domain.Card, error) {
			return domain.Card{}, errors.New("disk on fire at /var/lib/scry/decks.db")
		},
	})

	rec := do(t, h, http.MethodPost, "/decks/0/cards", url.Values{"front": {"a"}, "back": {"b"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "An unexpected error occurred")
	assert.NotContains(t, rec.Body.String(), "/var/lib")
}

func TestCreateCardWithoutListRefresh(t *testing.T) {
	h := newTestRouter(t, &mocks.MockDeckStore{
		DefaultError: store.ErrStoreUnavailable,
		InsertCardFn: func(ctx context.Context, deckID int64, payload domain.CardPayload) (domain.Card, error) {
			return domain.Card{ID: 4, Front: payload.Front, Back: payload.Back}, nil
		},
	})

	rec := do(t, h, http.MethodPost, "/decks/0/cards", url.Values{"front": {"a"}, "back": {"b"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="card-0-4"`)
	assert.NotContains(t, rec.Body.String(), "hx-swap-oob")
}
