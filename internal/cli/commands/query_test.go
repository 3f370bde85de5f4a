package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/storefront/internal/database"
)

func sampleRows() []database.Row {
	return []database.Row{
		{"id": "o1", "status": "paid", "total_cents": int64(1250)},
		{"id": "o2", "status": "pending", "total_cents": int64(300), "note": "gift, wrapped"},
	}
}

func TestRenderResults_Table(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, nil, sampleRows(), "table"))

	output := buf.String()
	assert.Contains(t, output, "o1")
	assert.Contains(t, output, "pending")
	assert.Contains(t, output, "NULL", "missing columns render as NULL")
	assert.Contains(t, output, "(2 rows)")
}

func TestRenderResults_JSON(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, nil, sampleRows()[:1], "json"))
	assert.JSONEq(t, `[{"id": "o1", "status": "paid", "total_cents": 1250}]`, buf.String())

	buf.Reset()
	require.NoError(t, renderResults(buf, nil, nil, "json"))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestRenderResults_CSV(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, nil, sampleRows(), "csv"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3) // header + 2 rows
	assert.Equal(t, "id,note,status,total_cents", lines[0])
	assert.Equal(t, "o1,NULL,paid,1250", lines[1])
	assert.Equal(t, `o2,"gift, wrapped",pending,300`, lines[2])
}

func TestRenderResults_Markdown(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, nil, sampleRows()[:1], "md"))

	output := buf.String()
	assert.Contains(t, output, "| id | status | total_cents |")
	assert.Contains(t, output, "| o1 | paid | 1250 |")
}

func TestRenderResults_Empty(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, nil, nil, "table"))
	assert.Equal(t, "(0 rows)\n", buf.String())

	buf.Reset()
	require.NoError(t, renderResults(buf, nil, nil, "csv"))
	assert.Empty(t, buf.String())
}

func TestRenderResults_ColumnOrder(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, []string{"total_cents", "id"}, sampleRows()[:1], "csv"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "total_cents,id", lines[0])
	assert.Equal(t, "1250,o1", lines[1])
}

func TestExecuteAndRender_KeepsSelectOrder(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, database.Options{URL: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	buf := new(bytes.Buffer)
	require.NoError(t, executeAndRender(ctx, buf, db, "SELECT 'Ada' AS name, 'a1' AS id", "csv"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "name,id", lines[0])
	assert.Equal(t, "Ada,a1", lines[1])
}

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		stmt string
		want bool
	}{
		{"SELECT 1", true},
		{"  select * from orders", true},
		{"WITH x AS (SELECT 1) SELECT * FROM x", true},
		{"(SELECT 1) UNION (SELECT 2)", true},
		{"PRAGMA table_info(orders)", true},
		{"DELETE FROM orders RETURNING id", true},
		{"UPDATE orders SET status = 'paid'", false},
		{"CREATE TABLE t (id int)", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, returnsRows(tt.stmt), tt.stmt)
	}
}

func TestListTablesSQL(t *testing.T) {
	assert.Contains(t, listTablesSQL(database.SQLite), "sqlite_master")
	assert.Contains(t, listTablesSQL(database.Postgres), "information_schema.tables")
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		input    any
		expected string
	}{
		{nil, "NULL"},
		{"hello", "hello"},
		{42, "42"},
		{3.14, "3.14"},
		{true, "true"},
		{ts, "2024-06-01T12:00:00Z"},
		{[]byte("raw"), "raw"},
		{json.RawMessage(`{"a":1}`), `{"a":1}`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatValue(tt.input))
	}
}
