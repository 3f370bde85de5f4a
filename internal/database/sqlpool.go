package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	// Pure-Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

// SQLHandle is a pooled handle over database/sql.
type SQLHandle struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// NewSQLHandle wraps an open *sql.DB. The handle takes ownership of db.
func NewSQLHandle(db *sql.DB, dialect Dialect, logger *slog.Logger) *SQLHandle {
	if logger == nil {
		logger = discardLogger()
	}
	return &SQLHandle{db: db, dialect: dialect, logger: logger}
}

// sqliteDSN converts a sqlite URL into a modernc DSN with foreign keys on.
func sqliteDSN(raw string) string {
	path := raw
	switch {
	case strings.HasPrefix(path, "sqlite://"):
		path = strings.TrimPrefix(path, "sqlite://")
	case strings.HasPrefix(path, "sqlite3://"):
		path = strings.TrimPrefix(path, "sqlite3://")
	case strings.HasPrefix(path, "sqlite:"):
		path = strings.TrimPrefix(path, "sqlite:")
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// openSQLite opens a SQLite pool and checks it answers.
func openSQLite(ctx context.Context, raw string, pool PoolOptions, logger *slog.Logger) (*SQLHandle, error) {
	dsn := sqliteDSN(raw)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &ConfigurationError{Field: "database.url", Reason: "cannot open sqlite database", Err: err}
	}

	// Each connection to :memory: is a separate database.
	if isMemoryDSN(dsn) {
		db.SetMaxOpenConns(1)
	} else if pool.MaxConns > 0 {
		db.SetMaxOpenConns(int(pool.MaxConns))
	}
	if pool.MinConns > 0 {
		db.SetMaxIdleConns(int(pool.MinConns))
	}
	if pool.MaxConnLifetime > 0 {
		db.SetConnMaxLifetime(pool.MaxConnLifetime)
	}
	if pool.MaxConnIdleTime > 0 {
		db.SetConnMaxIdleTime(pool.MaxConnIdleTime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return NewSQLHandle(db, SQLite, logger), nil
}

// Query implements DB.
func (h *SQLHandle) Query(ctx context.Context, q Descriptor) ([]Row, error) {
	_, out, err := h.QueryColumns(ctx, q)
	return out, err
}

// QueryColumns implements ColumnQuerier.
func (h *SQLHandle) QueryColumns(ctx context.Context, q Descriptor) ([]string, []Row, error) {
	query, args, err := q.Build(h.dialect)
	if err != nil {
		return nil, nil, queryErr("build", StrategyPooled, err)
	}

	h.logger.Debug("query", "sql", query, "args", len(args))
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, queryErr("query", StrategyPooled, err)
	}
	defer func() { _ = rows.Close() }()

	cols, out, err := scanRows(rows)
	if err != nil {
		return nil, nil, queryErr("query", StrategyPooled, err)
	}
	return cols, out, nil
}

// Exec implements DB.
func (h *SQLHandle) Exec(ctx context.Context, q Descriptor) (Result, error) {
	query, args, err := q.Build(h.dialect)
	if err != nil {
		return Result{}, queryErr("build", StrategyPooled, err)
	}

	h.logger.Debug("exec", "sql", query, "args", len(args))
	res, err := h.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, queryErr("exec", StrategyPooled, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Result{}, queryErr("exec", StrategyPooled, err)
	}
	return Result{RowsAffected: n}, nil
}

// Ping implements DB.
func (h *SQLHandle) Ping(ctx context.Context) error {
	return queryErr("ping", StrategyPooled, h.db.PingContext(ctx))
}

// Strategy implements DB.
func (h *SQLHandle) Strategy() Strategy { return StrategyPooled }

// Dialect implements DB.
func (h *SQLHandle) Dialect() Dialect { return h.dialect }

// Close implements DB.
func (h *SQLHandle) Close() error {
	return h.db.Close()
}

// sessionDB implements migrator. The pool itself is handed to goose.
func (h *SQLHandle) sessionDB(context.Context) (*sql.DB, func() error, error) {
	return h.db, func() error { return nil }, nil
}

// scanRows collects rows into maps, turning []byte into string.
func scanRows(rows *sql.Rows) ([]string, []Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
