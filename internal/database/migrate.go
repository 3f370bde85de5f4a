package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// goose keeps its base FS, dialect and logger in package globals.
var gooseMu sync.Mutex

// migrator is implemented by handles that can lend a session-scoped *sql.DB.
type migrator interface {
	sessionDB(ctx context.Context) (*sql.DB, func() error, error)
}

func sessionFor(ctx context.Context, db DB) (*sql.DB, func() error, error) {
	m, ok := db.(migrator)
	if !ok {
		return nil, nil, fmt.Errorf("handle %T does not support migrations", db)
	}
	return m.sessionDB(ctx)
}

func migrationDir(d Dialect) string {
	if d.Name == SQLite.Name {
		return "migrations/sqlite"
	}
	return "migrations/postgres"
}

// gooseLogger routes goose output through slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func withGoose(ctx context.Context, db DB, logger *slog.Logger, fn func(*sql.DB, string) error) error {
	session, release, err := sessionFor(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to open migration session: %w", err)
	}
	defer func() { _ = release() }()

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	if logger != nil {
		goose.SetLogger(gooseLogger{logger: logger})
	} else {
		goose.SetLogger(goose.NopLogger())
	}
	if err := goose.SetDialect(db.Dialect().Name); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	return fn(session, migrationDir(db.Dialect()))
}

// Migrate runs all pending migrations for the handle's dialect.
func Migrate(ctx context.Context, db DB, logger *slog.Logger) error {
	return withGoose(ctx, db, logger, func(session *sql.DB, dir string) error {
		if err := goose.UpContext(ctx, session, dir); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	})
}

// MigrationVersion returns the current schema version.
func MigrationVersion(ctx context.Context, db DB) (int64, error) {
	var version int64
	err := withGoose(ctx, db, nil, func(session *sql.DB, _ string) error {
		v, err := goose.GetDBVersionContext(ctx, session)
		if err != nil {
			return fmt.Errorf("failed to read migration version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

// LatestMigrationVersion returns the newest embedded migration version for
// dialect d. It does not touch the database.
func LatestMigrationVersion(d Dialect) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	found, err := goose.CollectMigrations(migrationDir(d), 0, goose.MaxVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to collect migrations: %w", err)
	}
	last, err := found.Last()
	if err != nil {
		return 0, fmt.Errorf("no migrations for %s: %w", d.Name, err)
	}
	return last.Version, nil
}
