package authors

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/storefront/internal/cart"
	"github.com/leapstack-labs/storefront/internal/ui/notifier"
)

// SetupRoutes registers the authors feature routes.
func SetupRoutes(
	router chi.Router,
	st AuthorStore,
	deleter Deleter,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	cartConfig cart.ProviderConfig,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(st, deleter, sessionStore, notify, cartConfig, logger)

	router.Get("/authors", handlers.AuthorsPage)
	router.Get("/authors/updates", handlers.AuthorsPageUpdates)
	router.Get("/authors/{id}", handlers.AuthorPage)

	router.Route("/admin/authors", func(r chi.Router) {
		r.Get("/", handlers.AdminAuthorsPage)
		r.Get("/updates", handlers.AdminAuthorsPageUpdates)
		r.Delete("/{id}", handlers.DeleteAuthor)
		r.Post("/{id}/delete", handlers.DeleteAuthorForm)
	})

	return nil
}
