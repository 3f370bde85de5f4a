// Package store is the data-access layer for authors, quotes and orders.
//
// Every method returns (value, error). Lookups return nil, nil when the
// record does not exist. Failures are logged once here and returned as an
// *OpError carrying a fixed, user-facing message; the underlying cause is
// available through errors.Unwrap.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/storefront/internal/database"
)

// User-facing failure messages.
const (
	MsgFetchAuthor  = "Failed to fetch author"
	MsgDeleteAuthor = "Failed to delete author"
	MsgListAuthors  = "Failed to list authors"
	MsgCreateAuthor = "Failed to create author"
	MsgFetchQuote   = "Failed to fetch quote"
	MsgListQuotes   = "Failed to list quotes"
	MsgCreateQuote  = "Failed to create quote"
	MsgListOrders   = "Failed to list orders"
	MsgCreateOrder  = "Failed to create order"
)

// OpError is a data-access failure. Error returns only the user-facing
// message so it can be shown as-is.
type OpError struct {
	Op      string
	Message string
	Err     error
}

func (e *OpError) Error() string { return e.Message }

func (e *OpError) Unwrap() error { return e.Err }

// Store reads and writes domain records through a database handle.
type Store struct {
	db     database.DB
	logger *slog.Logger
	now    func() time.Time
}

// New creates a store over db. The handle is owned by the caller.
func New(db database.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// DB returns the underlying handle.
func (s *Store) DB() database.DB {
	return s.db
}

// fail logs err once and wraps it in an OpError.
func (s *Store) fail(ctx context.Context, op, msg string, err error, attrs ...any) error {
	args := append([]any{"op", op, "error", err}, attrs...)
	s.logger.ErrorContext(ctx, msg, args...)
	return &OpError{Op: op, Message: msg, Err: err}
}

func generateID() string {
	return uuid.New().String()
}
