package testutil

import (
	"context"
	"testing"

	"github.com/leapstack-labs/storefront/internal/database"
)

// OpenTestDB opens a migrated in-memory SQLite handle that is closed when
// the test ends.
func OpenTestDB(t testing.TB) database.DB {
	t.Helper()
	ctx := context.Background()
	logger := NewTestLogger(t)

	db, err := database.Open(ctx, database.Options{
		Environment: "test",
		URL:         ":memory:",
		Logger:      logger,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(ctx, db, logger); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
