package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// PgxHandle is a pooled PostgreSQL handle backed by pgxpool.
type PgxHandle struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// openPgxPool builds the pool, eagerly opening up to MinConns connections,
// and pings once so an unreachable database fails at startup.
func openPgxPool(ctx context.Context, connString string, opts PoolOptions, logger *slog.Logger) (*PgxHandle, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, &ConfigurationError{Field: "database.url", Reason: "malformed postgres connection string", Err: err}
	}

	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Debug("connection pool ready",
		"host", cfg.ConnConfig.Host,
		"max_conns", cfg.MaxConns,
		"min_conns", cfg.MinConns,
	)

	return &PgxHandle{pool: pool, logger: logger}, nil
}

// Query implements DB.
func (h *PgxHandle) Query(ctx context.Context, q Descriptor) ([]Row, error) {
	_, out, err := h.QueryColumns(ctx, q)
	return out, err
}

// QueryColumns implements ColumnQuerier.
func (h *PgxHandle) QueryColumns(ctx context.Context, q Descriptor) ([]string, []Row, error) {
	query, args, err := q.Build(Postgres)
	if err != nil {
		return nil, nil, queryErr("build", StrategyPooled, err)
	}

	h.logger.Debug("query", "sql", query, "args", len(args))
	rows, err := h.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, queryErr("query", StrategyPooled, err)
	}

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, nil, queryErr("query", StrategyPooled, err)
	}

	out := make([]Row, len(maps))
	for i, m := range maps {
		out[i] = Row(m)
	}
	return cols, out, nil
}

// Exec implements DB.
func (h *PgxHandle) Exec(ctx context.Context, q Descriptor) (Result, error) {
	query, args, err := q.Build(Postgres)
	if err != nil {
		return Result{}, queryErr("build", StrategyPooled, err)
	}

	h.logger.Debug("exec", "sql", query, "args", len(args))
	tag, err := h.pool.Exec(ctx, query, args...)
	if err != nil {
		return Result{}, queryErr("exec", StrategyPooled, err)
	}
	return Result{RowsAffected: tag.RowsAffected()}, nil
}

// Ping implements DB.
func (h *PgxHandle) Ping(ctx context.Context) error {
	return queryErr("ping", StrategyPooled, h.pool.Ping(ctx))
}

// Strategy implements DB.
func (h *PgxHandle) Strategy() Strategy { return StrategyPooled }

// Dialect implements DB.
func (h *PgxHandle) Dialect() Dialect { return Postgres }

// Close implements DB.
func (h *PgxHandle) Close() error {
	h.pool.Close()
	return nil
}

// Stat exposes pool statistics for diagnostics.
func (h *PgxHandle) Stat() *pgxpool.Stat {
	return h.pool.Stat()
}

// sessionDB implements migrator. Closing the returned *sql.DB leaves the pool open.
func (h *PgxHandle) sessionDB(context.Context) (*sql.DB, func() error, error) {
	db := stdlib.OpenDBFromPool(h.pool)
	return db, db.Close, nil
}
