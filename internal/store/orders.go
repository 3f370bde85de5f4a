package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/storefront/internal/database"
)

// DefaultPageSize is the number of orders per page when none is given.
const DefaultPageSize = 20

// Order is a completed or pending checkout.
type Order struct {
	ID            string    `db:"id" json:"id" yaml:"id"`
	CustomerEmail string    `db:"customer_email" json:"customerEmail" yaml:"customer_email"`
	Status        string    `db:"status" json:"status" yaml:"status"`
	TotalCents    int64     `db:"total_cents" json:"totalCents" yaml:"total_cents"`
	Currency      string    `db:"currency" json:"currency" yaml:"currency"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt" yaml:"created_at,omitempty"`
}

var orderColumns = []string{"id", "customer_email", "status", "total_cents", "currency", "created_at"}

// OrderQuery selects one page of orders. Page is the raw request value.
type OrderQuery struct {
	Search   string
	Page     string
	PageSize int
}

// OrderPage is one page of the orders list.
type OrderPage struct {
	Orders     []Order `json:"orders"`
	Page       int     `json:"page"`
	TotalPages int     `json:"totalPages"`
	Total      int64   `json:"total"`
}

// PageNumber coerces a raw page value to a 1-based page number.
// Anything that is not a positive integer is page 1.
func PageNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (q OrderQuery) filter() []database.Cond {
	term := strings.TrimSpace(q.Search)
	if term == "" {
		return nil
	}
	pattern := "%" + database.EscapeLike(term) + "%"
	return []database.Cond{database.Or(
		database.ILike("id", pattern),
		database.ILike("customer_email", pattern),
		database.ILike("status", pattern),
	)}
}

// ListOrders returns the requested page of orders, newest first.
func (s *Store) ListOrders(ctx context.Context, q OrderQuery) (*OrderPage, error) {
	size := q.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	page := PageNumber(q.Page)
	filter := q.filter()

	countRows, err := s.db.Query(ctx, database.Count("orders").Where(filter...))
	if err != nil {
		return nil, s.fail(ctx, "list_orders", MsgListOrders, err, "q", q.Search)
	}
	count, err := database.One[struct {
		Total int64 `db:"total"`
	}](countRows)
	if err != nil {
		return nil, s.fail(ctx, "list_orders", MsgListOrders, err, "q", q.Search)
	}
	var total int64
	if count != nil {
		total = count.Total
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}
	// A page past the end shows the last page.
	if page > totalPages {
		page = totalPages
	}

	rows, err := s.db.Query(ctx, database.Select("orders", orderColumns...).
		Where(filter...).
		OrderBy("created_at", true).
		OrderBy("id", false).
		Limit(size).
		Offset((page-1)*size))
	if err != nil {
		return nil, s.fail(ctx, "list_orders", MsgListOrders, err, "q", q.Search, "page", page)
	}

	orders, err := database.All[Order](rows)
	if err != nil {
		return nil, s.fail(ctx, "list_orders", MsgListOrders, err, "q", q.Search, "page", page)
	}

	return &OrderPage{
		Orders:     orders,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// CreateOrder inserts o. ID, Currency and CreatedAt are filled in when empty.
func (s *Store) CreateOrder(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = generateID()
	}
	if o.Currency == "" {
		o.Currency = "USD"
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}

	_, err := s.db.Exec(ctx, database.InsertInto("orders").
		Set("id", o.ID).
		Set("customer_email", o.CustomerEmail).
		Set("status", o.Status).
		Set("total_cents", o.TotalCents).
		Set("currency", o.Currency).
		Set("created_at", o.CreatedAt))
	if err != nil {
		return s.fail(ctx, "create_order", MsgCreateOrder, err, "id", o.ID)
	}
	return nil
}
