package database

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PoolOptions bounds the pooled strategy.
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// HTTPOptions configures the serverless strategy.
type HTTPOptions struct {
	// Endpoint overrides the SQL-over-HTTP URL derived from the database host.
	Endpoint string
	// Timeout caps each request. Zero means no client-side timeout.
	Timeout time.Duration
}

// Options is everything Open needs to build a handle.
type Options struct {
	Environment string
	URL         string
	Pool        PoolOptions
	HTTP        HTTPOptions
	Logger      *slog.Logger
	Registerer  prometheus.Registerer
}

type backend int

const (
	backendPostgres backend = iota
	backendSQLite
)

// classify reports which backend a connection URL points at.
func classify(raw string) (backend, *url.URL, error) {
	switch {
	case raw == ":memory:",
		strings.HasPrefix(raw, "sqlite:"),
		strings.HasPrefix(raw, "sqlite3:"),
		strings.HasPrefix(raw, "file:"):
		return backendSQLite, nil, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return 0, nil, &ConfigurationError{Field: "database.url", Reason: "cannot parse connection URL", Err: err}
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return backendPostgres, u, nil
	case "":
		return 0, nil, &ConfigurationError{Field: "database.url", Reason: "missing scheme"}
	default:
		return 0, nil, &ConfigurationError{Field: "database.url", Reason: "unsupported scheme " + u.Scheme}
	}
}

// Open selects the connection strategy for opts.Environment and builds the
// process's database handle. It is called once at startup; the returned
// handle is never swapped for another strategy.
func Open(ctx context.Context, opts Options) (DB, error) {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}

	raw := strings.TrimSpace(opts.URL)
	if raw == "" {
		return nil, &ConfigurationError{Field: "database.url", Reason: "connection string is required"}
	}

	kind, u, err := classify(raw)
	if err != nil {
		return nil, err
	}

	strategy := SelectStrategy(opts.Environment)

	var db DB
	switch {
	case strategy == StrategyServerless:
		if kind != backendPostgres {
			return nil, &ConfigurationError{Field: "database.url", Reason: "serverless strategy requires a postgres URL"}
		}
		db, err = newServerless(raw, u, opts.HTTP, logger)
	case kind == backendPostgres:
		db, err = openPgxPool(ctx, raw, opts.Pool, logger)
	default:
		db, err = openSQLite(ctx, raw, opts.Pool, logger)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("database handle ready",
		"environment", opts.Environment,
		"strategy", db.Strategy(),
		"dialect", db.Dialect().Name,
	)

	if opts.Registerer != nil {
		instrumented, err := Instrument(db, opts.Registerer)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return instrumented, nil
	}
	return db, nil
}
