// Package payments exposes the cart provider configuration to the client.
package payments

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/storefront/internal/cart"
)

// Handlers serves the cart provider configuration.
type Handlers struct {
	config cart.ProviderConfig
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(config cart.ProviderConfig) *Handlers {
	return &Handlers{config: config}
}

// CartConfig returns the provider configuration the client mounts the
// cart with. The publishable key is public by definition.
func (h *Handlers) CartConfig(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(h.config.JSON()))
}

// SetupRoutes registers the payments feature routes.
func SetupRoutes(router chi.Router, config cart.ProviderConfig) error {
	handlers := NewHandlers(config)

	router.Get("/api/cart/config", handlers.CartConfig)

	return nil
}
