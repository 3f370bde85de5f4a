// Package actions holds the server-side mutations the UI triggers.
//
// Actions never return Go errors. They report a Result the UI can render
// directly, and they invalidate the cached pages their change affects.
package actions

import (
	"context"
	"errors"
	"log/slog"

	"github.com/leapstack-labs/storefront/internal/store"
)

// Paths invalidated after an author changes.
const (
	AuthorsPath      = "/authors"
	AdminAuthorsPath = "/admin/authors"
)

// Result is what an action reports back to the UI.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Invalidator drops cached renders for paths.
type Invalidator interface {
	Invalidate(paths ...string)
}

// AuthorStore is the slice of the store the author actions need.
type AuthorStore interface {
	DeleteAuthor(ctx context.Context, id string) error
}

// Authors exposes author mutations.
type Authors struct {
	store  AuthorStore
	cache  Invalidator
	logger *slog.Logger
}

// NewAuthors creates the author actions.
func NewAuthors(s AuthorStore, cache Invalidator, logger *slog.Logger) *Authors {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Authors{store: s, cache: cache, logger: logger}
}

// Delete removes the author with id. On success the public and admin
// author lists are invalidated; on failure nothing is.
func (a *Authors) Delete(ctx context.Context, id string) Result {
	if err := a.store.DeleteAuthor(ctx, id); err != nil {
		return Result{Success: false, Error: failureMessage(err)}
	}

	a.cache.Invalidate(AuthorsPath, AdminAuthorsPath)
	a.logger.InfoContext(ctx, "author deleted", "id", id)
	return Result{Success: true}
}

func failureMessage(err error) string {
	var opErr *store.OpError
	if errors.As(err, &opErr) {
		return opErr.Message
	}
	return store.MsgDeleteAuthor
}
