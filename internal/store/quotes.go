package store

import (
	"context"
	"time"

	"github.com/leapstack-labs/storefront/internal/database"
)

// Quote is a line attributed to an author.
type Quote struct {
	ID        string    `db:"id" json:"id" yaml:"id"`
	AuthorID  string    `db:"author_id" json:"authorId" yaml:"author_id"`
	Text      string    `db:"text" json:"text" yaml:"text"`
	CreatedAt time.Time `db:"created_at" json:"createdAt" yaml:"created_at,omitempty"`
}

var quoteColumns = []string{"id", "author_id", "text", "created_at"}

// FetchQuoteByID returns the quote with id, or nil if there is none.
func (s *Store) FetchQuoteByID(ctx context.Context, id string) (*Quote, error) {
	rows, err := s.db.Query(ctx, database.Select("quotes", quoteColumns...).
		Where(database.Eq("id", id)).
		Limit(1))
	if err != nil {
		return nil, s.fail(ctx, "fetch_quote", MsgFetchQuote, err, "id", id)
	}

	quote, err := database.One[Quote](rows)
	if err != nil {
		return nil, s.fail(ctx, "fetch_quote", MsgFetchQuote, err, "id", id)
	}
	return quote, nil
}

// ListQuotesByAuthor returns an author's quotes, oldest first.
func (s *Store) ListQuotesByAuthor(ctx context.Context, authorID string) ([]Quote, error) {
	rows, err := s.db.Query(ctx, database.Select("quotes", quoteColumns...).
		Where(database.Eq("author_id", authorID)).
		OrderBy("created_at", false).
		OrderBy("id", false))
	if err != nil {
		return nil, s.fail(ctx, "list_quotes", MsgListQuotes, err, "author_id", authorID)
	}

	quotes, err := database.All[Quote](rows)
	if err != nil {
		return nil, s.fail(ctx, "list_quotes", MsgListQuotes, err, "author_id", authorID)
	}
	return quotes, nil
}

// CreateQuote inserts q. ID and CreatedAt are filled in when empty.
func (s *Store) CreateQuote(ctx context.Context, q *Quote) error {
	if q.ID == "" {
		q.ID = generateID()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = s.now()
	}

	_, err := s.db.Exec(ctx, database.InsertInto("quotes").
		Set("id", q.ID).
		Set("author_id", q.AuthorID).
		Set("text", q.Text).
		Set("created_at", q.CreatedAt))
	if err != nil {
		return s.fail(ctx, "create_quote", MsgCreateQuote, err, "id", q.ID)
	}
	return nil
}
