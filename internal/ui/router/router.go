// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/leapstack-labs/storefront/internal/actions"
	"github.com/leapstack-labs/storefront/internal/cart"
	"github.com/leapstack-labs/storefront/internal/database"
	"github.com/leapstack-labs/storefront/internal/store"
	authorsFeature "github.com/leapstack-labs/storefront/internal/ui/features/authors"
	ordersFeature "github.com/leapstack-labs/storefront/internal/ui/features/orders"
	paymentsFeature "github.com/leapstack-labs/storefront/internal/ui/features/payments"
	quotesFeature "github.com/leapstack-labs/storefront/internal/ui/features/quotes"
	"github.com/leapstack-labs/storefront/internal/ui/notifier"
	"github.com/leapstack-labs/storefront/internal/ui/resources"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	DB           database.DB
	Store        *store.Store
	Actions      *actions.Authors
	SessionStore sessions.Store
	Notifier     *notifier.Notifier
	Cart         cart.ProviderConfig
	// Gatherer backs /metrics. The route is not mounted when nil.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps) error {
	router.Handle(resources.StaticPrefix+"*", resources.Handler())

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, actions.AuthorsPath, http.StatusFound)
	})

	setupSystem(router, deps.DB, deps.Gatherer)

	if err := authorsFeature.SetupRoutes(router, deps.Store, deps.Actions, deps.SessionStore, deps.Notifier, deps.Cart, deps.Logger); err != nil {
		return err
	}

	if err := quotesFeature.SetupRoutes(router, deps.Store, deps.SessionStore, deps.Cart, deps.Logger); err != nil {
		return err
	}

	if err := ordersFeature.SetupRoutes(router, deps.Store, deps.SessionStore, deps.Cart, deps.Logger); err != nil {
		return err
	}

	if err := paymentsFeature.SetupRoutes(router, deps.Cart); err != nil {
		return err
	}

	return nil
}
