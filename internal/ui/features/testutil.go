// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/storefront/internal/cart"
	"github.com/leapstack-labs/storefront/internal/store"
	"github.com/leapstack-labs/storefront/internal/testutil"
	"github.com/leapstack-labs/storefront/internal/ui/notifier"
)

// TestAuthor is a helper to create test authors with minimal boilerplate.
type TestAuthor struct {
	ID     string
	Name   string
	Bio    string
	Quotes []string
}

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Store        *store.Store
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	Cart         cart.ProviderConfig
}

// SetupTestFixture creates a fixture over a migrated in-memory database
// seeded with the given authors and their quotes.
func SetupTestFixture(t *testing.T, authors ...TestAuthor) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	st := store.New(testutil.OpenTestDB(t), logger)

	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, a := range authors {
		author := &store.Author{ID: a.ID, Name: a.Name}
		if a.Bio != "" {
			bio := a.Bio
			author.Bio = &bio
		}
		require.NoError(t, st.CreateAuthor(ctx, author))

		for j, text := range a.Quotes {
			require.NoError(t, st.CreateQuote(ctx, &store.Quote{
				ID:        fmt.Sprintf("%s-q%d", author.ID, j+1),
				AuthorID:  author.ID,
				Text:      text,
				CreatedAt: base.Add(time.Duration(i*10+j) * time.Minute),
			}))
		}
	}

	cfg, err := cart.NewProviderConfig(cart.Settings{PublishableKey: "pk_test_123"}, false)
	require.NoError(t, err)

	return &TestFixture{
		Store:        st,
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
		Cart:         cfg,
	}
}

// SeedOrders inserts n orders with ids ord-00, ord-01, ... one hour apart.
func (f *TestFixture) SeedOrders(t *testing.T, n int) {
	t.Helper()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, f.Store.CreateOrder(context.Background(), &store.Order{
			ID:            fmt.Sprintf("ord-%02d", i),
			CustomerEmail: fmt.Sprintf("buyer%d@example.com", i),
			Status:        "paid",
			TotalCents:    int64(1000 + i),
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		}))
	}
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RequestWithTimeout wraps a request with a context timeout. The returned
// cancel must be called by the test.
func RequestWithTimeout(r *http.Request, timeout time.Duration) (*http.Request, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	return r.WithContext(ctx), cancel
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
