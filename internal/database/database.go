// Package database provides the storefront's connection handle.
//
// A process holds exactly one DB, created by Open at startup. Open inspects
// the deployment environment and picks one of two strategies:
//
//   - serverless: every statement is an independent HTTPS request to a
//     SQL-over-HTTP endpoint; no socket is held between queries.
//   - pooled: a bounded pool of persistent connections (pgxpool for
//     PostgreSQL, database/sql for SQLite) reused across queries.
//
// Callers never see which strategy backs the handle. They issue declarative
// descriptors (see Select, InsertInto, DeleteFrom, Count, Raw) and decode the
// returned rows with All or One.
package database

import (
	"context"
	"fmt"
	"sort"
)

// Strategy identifies how a handle talks to the database.
type Strategy string

const (
	// StrategyPooled keeps a pool of persistent connections.
	StrategyPooled Strategy = "pooled"
	// StrategyServerless issues each query as a stateless HTTP request.
	StrategyServerless Strategy = "serverless"
)

// ProductionEnvironment is the deployment mode that selects the serverless strategy.
const ProductionEnvironment = "production"

// Row is a single result row keyed by column name.
type Row map[string]any

// Result reports the outcome of a statement that returns no rows.
type Result struct {
	RowsAffected int64
}

// Descriptor is a declarative query that can be compiled for a dialect.
type Descriptor interface {
	Build(d Dialect) (string, []any, error)
}

// DB is the query capability shared by every strategy.
type DB interface {
	// Query runs a descriptor and returns its rows in order.
	Query(ctx context.Context, q Descriptor) ([]Row, error)

	// Exec runs a descriptor that modifies data.
	Exec(ctx context.Context, q Descriptor) (Result, error)

	// Ping checks that the database answers.
	Ping(ctx context.Context) error

	// Strategy reports which connection strategy backs the handle.
	Strategy() Strategy

	// Dialect reports the SQL dialect descriptors are compiled for.
	Dialect() Dialect

	// Close releases pooled connections or idle HTTP transports.
	Close() error
}

// ColumnQuerier is implemented by handles that can report result columns in
// select-list order. Every handle Open returns implements it.
type ColumnQuerier interface {
	QueryColumns(ctx context.Context, q Descriptor) ([]string, []Row, error)
}

// QueryColumns runs q and returns its column names in select-list order
// along with the rows. For a handle that cannot report the order, the names
// seen in the rows are returned sorted.
func QueryColumns(ctx context.Context, db DB, q Descriptor) ([]string, []Row, error) {
	if cq, ok := db.(ColumnQuerier); ok {
		return cq.QueryColumns(ctx, q)
	}
	rows, err := db.Query(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	return ColumnsOf(rows), rows, nil
}

// ColumnsOf returns the sorted union of column names across rows.
func ColumnsOf(rows []Row) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, row := range rows {
		for col := range row {
			if _, ok := seen[col]; !ok {
				seen[col] = struct{}{}
				cols = append(cols, col)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

// Dialect holds the SQL differences descriptors need to care about.
type Dialect struct {
	// Name is the goose dialect name.
	Name string

	// Numbered placeholders ($1, $2) instead of positional (?).
	Numbered bool

	// LikeOp is the case-insensitive pattern match operator.
	LikeOp string
}

var (
	// Postgres is the dialect for pgx pools and the SQL-over-HTTP endpoint.
	Postgres = Dialect{Name: "postgres", Numbered: true, LikeOp: "ILIKE"}

	// SQLite is the dialect for local file and in-memory databases.
	SQLite = Dialect{Name: "sqlite3", Numbered: false, LikeOp: "LIKE"}
)

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d.Numbered {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// SelectStrategy maps a deployment environment to a connection strategy.
// Only the exact value "production" selects the serverless strategy.
func SelectStrategy(environment string) Strategy {
	if environment == ProductionEnvironment {
		return StrategyServerless
	}
	return StrategyPooled
}
