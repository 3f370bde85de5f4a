package store

import (
	"context"
	"time"

	"github.com/leapstack-labs/storefront/internal/database"
)

// Author is a person quotes are attributed to.
type Author struct {
	ID        string    `db:"id" json:"id" yaml:"id"`
	Name      string    `db:"name" json:"name" yaml:"name"`
	Bio       *string   `db:"bio" json:"bio,omitempty" yaml:"bio,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt" yaml:"created_at,omitempty"`
}

var authorColumns = []string{"id", "name", "bio", "created_at"}

// FetchAuthorByID returns the author with id, or nil if there is none.
func (s *Store) FetchAuthorByID(ctx context.Context, id string) (*Author, error) {
	rows, err := s.db.Query(ctx, database.Select("authors", authorColumns...).
		Where(database.Eq("id", id)).
		Limit(1))
	if err != nil {
		return nil, s.fail(ctx, "fetch_author", MsgFetchAuthor, err, "id", id)
	}

	author, err := database.One[Author](rows)
	if err != nil {
		return nil, s.fail(ctx, "fetch_author", MsgFetchAuthor, err, "id", id)
	}
	return author, nil
}

// DeleteAuthor removes the author with id and, by cascade, their quotes.
// Deleting an id that does not exist succeeds.
func (s *Store) DeleteAuthor(ctx context.Context, id string) error {
	res, err := s.db.Exec(ctx, database.DeleteFrom("authors").Where(database.Eq("id", id)))
	if err != nil {
		return s.fail(ctx, "delete_author", MsgDeleteAuthor, err, "id", id)
	}
	s.logger.DebugContext(ctx, "author deleted", "id", id, "rows", res.RowsAffected)
	return nil
}

// ListAuthors returns every author ordered by name.
func (s *Store) ListAuthors(ctx context.Context) ([]Author, error) {
	rows, err := s.db.Query(ctx, database.Select("authors", authorColumns...).
		OrderBy("name", false).
		OrderBy("id", false))
	if err != nil {
		return nil, s.fail(ctx, "list_authors", MsgListAuthors, err)
	}

	authors, err := database.All[Author](rows)
	if err != nil {
		return nil, s.fail(ctx, "list_authors", MsgListAuthors, err)
	}
	return authors, nil
}

// CreateAuthor inserts a. ID and CreatedAt are filled in when empty.
func (s *Store) CreateAuthor(ctx context.Context, a *Author) error {
	if a.ID == "" {
		a.ID = generateID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}

	_, err := s.db.Exec(ctx, database.InsertInto("authors").
		Set("id", a.ID).
		Set("name", a.Name).
		Set("bio", a.Bio).
		Set("created_at", a.CreatedAt))
	if err != nil {
		return s.fail(ctx, "create_author", MsgCreateAuthor, err, "id", a.ID)
	}
	return nil
}
