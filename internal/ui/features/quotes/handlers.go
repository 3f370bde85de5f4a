// Package quotes provides the quote detail page.
package quotes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/storefront/internal/cart"
	"github.com/leapstack-labs/storefront/internal/store"
	"github.com/leapstack-labs/storefront/internal/ui/features/common"
)

// QuoteStore is the slice of the store the quote page needs.
type QuoteStore interface {
	FetchQuoteByID(ctx context.Context, id string) (*store.Quote, error)
	FetchAuthorByID(ctx context.Context, id string) (*store.Author, error)
}

// Handlers provides HTTP handlers for the quotes feature.
type Handlers struct {
	store        QuoteStore
	sessionStore sessions.Store
	cartConfig   cart.ProviderConfig
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st QuoteStore, sessionStore sessions.Store, cartConfig cart.ProviderConfig, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{store: st, sessionStore: sessionStore, cartConfig: cartConfig, logger: logger}
}

// QuotePage renders a single quote with its attribution.
func (h *Handlers) QuotePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()
	data := common.PageData{
		Title:       "Quote",
		CurrentPath: "/authors",
		CartConfig:  h.cartConfig.JSON(),
		Flash:       common.PopFlash(h.sessionStore, w, r),
	}

	quote, err := h.store.FetchQuoteByID(ctx, id)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = common.Layout(data, common.Message("Something went wrong", err.Error())).Render(ctx, w)
		return
	}
	if quote == nil {
		w.WriteHeader(http.StatusNotFound)
		_ = common.Layout(data, common.Message("Quote not found", "No quote has id "+id+".")).Render(ctx, w)
		return
	}

	// Attribution is decoration; a failed author lookup is already logged
	// by the store and the quote still renders.
	author, _ := h.store.FetchAuthorByID(ctx, quote.AuthorID)

	if err := common.Layout(data, QuoteDetail(quote, author)).Render(ctx, w); err != nil {
		h.logger.ErrorContext(ctx, "failed to render quote", "id", id, "error", err)
	}
}

// QuoteDetail renders a quote and, when known, its author.
func QuoteDetail(quote *store.Quote, author *store.Author) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := common.NewHTML(w)
		h.Raw("<figure class=\"quote\"><blockquote>").Text(quote.Text).Raw("</blockquote>")
		if author != nil {
			h.Raw("<figcaption><a href=\"").Text("/authors/"+url.PathEscape(author.ID)).Raw("\">").
				Text(author.Name).Raw("</a></figcaption>")
		}
		return h.Raw("</figure>").Err()
	})
}
