// Package orders provides the paginated orders list.
package orders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/storefront/internal/cart"
	"github.com/leapstack-labs/storefront/internal/store"
	"github.com/leapstack-labs/storefront/internal/ui/features/common"
)

// OrderStore is the slice of the store the orders list needs.
type OrderStore interface {
	ListOrders(ctx context.Context, q store.OrderQuery) (*store.OrderPage, error)
}

// Handlers provides HTTP handlers for the orders feature.
type Handlers struct {
	store        OrderStore
	sessionStore sessions.Store
	cartConfig   cart.ProviderConfig
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st OrderStore, sessionStore sessions.Store, cartConfig cart.ProviderConfig, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		store:        st,
		sessionStore: sessionStore,
		cartConfig:   cartConfig,
		logger:       logger,
	}
}

func (h *Handlers) pageData(w http.ResponseWriter, r *http.Request) common.PageData {
	return common.PageData{
		Title:       "Orders",
		CurrentPath: "/orders",
		CartConfig:  h.cartConfig.JSON(),
		Flash:       common.PopFlash(h.sessionStore, w, r),
	}
}

// OrdersPage renders one page of orders using the search parameters cached
// by the SearchParams middleware.
func (h *Handlers) OrdersPage(w http.ResponseWriter, r *http.Request) {
	params := FromContext(r.Context())

	page, err := h.store.ListOrders(r.Context(), store.OrderQuery{
		Search: params.Q,
		Page:   params.Page,
	})
	data := h.pageData(w, r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = common.Layout(data, common.Message("Something went wrong", err.Error())).Render(r.Context(), w)
		return
	}

	if err := common.Layout(data, OrdersList(page, params)).Render(r.Context(), w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render orders", "error", err)
	}
}
