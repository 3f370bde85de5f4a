package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/storefront/internal/store"
)

const seedYAML = `
authors:
  - id: ada
    name: Ada Lovelace
    bio: Mathematician.
    quotes:
      - id: ada-1
        text: That brain of mine is something more than merely mortal.
      - text: The Analytical Engine weaves algebraic patterns.
  - name: Alan Kay
orders:
  - customer_email: first@example.com
    status: paid
    total_cents: 4200
  - id: ord-fixed
    customer_email: second@example.com
    status: pending
    total_cents: 1999
    currency: EUR
`

func TestParseSeed_RequiresAuthorName(t *testing.T) {
	_, err := store.ParseSeed([]byte("authors:\n  - bio: nameless\n"))
	assert.Error(t, err)

	_, err = store.ParseSeed([]byte("authors: [unterminated"))
	assert.Error(t, err)
}

func TestStore_Seed(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	data, err := store.LoadSeedFile(path)
	require.NoError(t, err)

	res, err := s.Seed(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, store.SeedResult{Authors: 2, Quotes: 2, Orders: 2}, res)

	ada, err := s.FetchAuthorByID(ctx, "ada")
	require.NoError(t, err)
	require.NotNil(t, ada)
	require.NotNil(t, ada.Bio)
	assert.Equal(t, "Mathematician.", *ada.Bio)

	quotes, err := s.ListQuotesByAuthor(ctx, "ada")
	require.NoError(t, err)
	assert.Len(t, quotes, 2)

	page, err := s.ListOrders(ctx, store.OrderQuery{Search: "ord-fixed"})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, "EUR", page.Orders[0].Currency)
}

func TestLoadSeedFile_Missing(t *testing.T) {
	_, err := store.LoadSeedFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
