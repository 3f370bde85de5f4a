package orders

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/storefront/internal/cart"
)

// SetupRoutes registers the orders feature routes.
func SetupRoutes(
	router chi.Router,
	st OrderStore,
	sessionStore sessions.Store,
	cartConfig cart.ProviderConfig,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(st, sessionStore, cartConfig, logger)

	router.With(SearchParams).Get("/orders", handlers.OrdersPage)

	return nil
}
