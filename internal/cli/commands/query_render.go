package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/storefront/internal/database"
)

// renderResults writes rows in the given format. cols sets the column order;
// when it is empty the sorted names found in rows are used.
func renderResults(w io.Writer, cols []string, rows []database.Row, format string) error {
	switch format {
	case "json":
		return renderJSON(w, rows)
	case "csv", "md", "markdown":
		if len(rows) == 0 {
			return nil
		}
	default:
		if len(rows) == 0 {
			_, _ = fmt.Fprintln(w, "(0 rows)")
			return nil
		}
	}

	if len(cols) == 0 {
		cols = database.ColumnsOf(rows)
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(cols))
		for i, col := range cols {
			r[i] = formatValue(row[col])
		}
		t.AppendRow(r)
	}

	switch format {
	case "csv":
		t.RenderCSV()
	case "md", "markdown":
		t.RenderMarkdown()
	default:
		t.Render()
		_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	}
	return nil
}

func renderJSON(w io.Writer, rows []database.Row) error {
	if rows == nil {
		rows = []database.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return val.Format(time.RFC3339)
	case []byte:
		return string(val)
	case json.RawMessage:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
