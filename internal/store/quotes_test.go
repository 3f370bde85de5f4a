package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/storefront/internal/store"
)

func TestStore_FetchQuoteByID(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.CreateAuthor(ctx, &store.Author{ID: "grace", Name: "Grace Hopper"}))
	require.NoError(t, s.CreateQuote(ctx, &store.Quote{
		ID:       "q1",
		AuthorID: "grace",
		Text:     "It's easier to ask forgiveness than it is to get permission.",
	}))

	q, err := s.FetchQuoteByID(ctx, "q1")
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "grace", q.AuthorID)
	assert.Contains(t, q.Text, "forgiveness")

	q, err = s.FetchQuoteByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestStore_FetchQuoteByID_Failure(t *testing.T) {
	s, mock, _ := setupMockStore(t)
	cause := errors.New("network unreachable")
	mock.ExpectQuery("FROM quotes").WillReturnError(cause)

	q, err := s.FetchQuoteByID(context.Background(), "q1")
	assert.Nil(t, q)
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch quote", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestStore_ListQuotesByAuthor(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.CreateAuthor(ctx, &store.Author{ID: "a", Name: "A"}))
	require.NoError(t, s.CreateAuthor(ctx, &store.Author{ID: "b", Name: "B"}))
	require.NoError(t, s.CreateQuote(ctx, &store.Quote{ID: "a1", AuthorID: "a", Text: "one"}))
	require.NoError(t, s.CreateQuote(ctx, &store.Quote{ID: "a2", AuthorID: "a", Text: "two"}))
	require.NoError(t, s.CreateQuote(ctx, &store.Quote{ID: "b1", AuthorID: "b", Text: "three"}))

	quotes, err := s.ListQuotesByAuthor(ctx, "a")
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	for _, q := range quotes {
		assert.Equal(t, "a", q.AuthorID)
	}

	quotes, err = s.ListQuotesByAuthor(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, quotes)
}
