package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		env  string
		want Strategy
	}{
		{"production", StrategyServerless},
		{"development", StrategyPooled},
		{"test", StrategyPooled},
		{"staging", StrategyPooled},
		{"", StrategyPooled},
		{"Production", StrategyPooled},
		{"PRODUCTION", StrategyPooled},
		{" production", StrategyPooled},
		{"production ", StrategyPooled},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectStrategy(tt.env))
		})
	}
}

func TestDialect_Placeholder(t *testing.T) {
	assert.Equal(t, "$1", Postgres.Placeholder(1))
	assert.Equal(t, "$12", Postgres.Placeholder(12))
	assert.Equal(t, "?", SQLite.Placeholder(1))
	assert.Equal(t, "?", SQLite.Placeholder(3))
}

func TestColumnsOf(t *testing.T) {
	rows := []Row{
		{"id": "o1", "status": "paid"},
		{"id": "o2", "note": "gift"},
	}
	assert.Equal(t, []string{"id", "note", "status"}, ColumnsOf(rows))
	assert.Empty(t, ColumnsOf(nil))
}

// rowsOnly is a DB that cannot report column order.
type rowsOnly struct {
	DB
	rows []Row
}

func (r rowsOnly) Query(context.Context, Descriptor) ([]Row, error) { return r.rows, nil }

func TestQueryColumns_FallsBackToSortedNames(t *testing.T) {
	db := rowsOnly{rows: []Row{{"name": "Ada", "id": "a1"}}}

	cols, rows, err := QueryColumns(context.Background(), db, Raw("SELECT name, id FROM authors"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, cols)
	assert.Len(t, rows, 1)
}
