package quotes

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/storefront/internal/cart"
)

// SetupRoutes registers the quotes feature routes.
func SetupRoutes(
	router chi.Router,
	st QuoteStore,
	sessionStore sessions.Store,
	cartConfig cart.ProviderConfig,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(st, sessionStore, cartConfig, logger)

	router.Get("/quotes/{id}", handlers.QuotePage)

	return nil
}
