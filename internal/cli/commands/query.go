package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/storefront/internal/database"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run SQL against the configured database",
		Long: `Run a SQL statement through the same handle the server uses.

Statements that return rows are rendered in the chosen format; anything
else reports the number of rows affected. SQL is read from the arguments,
from --input, or from stdin when it is piped.`,
		Example: `  # Execute SQL directly
  storefront query "SELECT id, name FROM authors"

  # List tables
  storefront query tables

  # Output as JSON
  storefront query "SELECT * FROM orders" --format json

  # From a file
  storefront query --input report.sql --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	cmd.AddCommand(newQueryTablesCommand(opts))

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	var sqlQuery string

	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(os.Stdin):
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	}

	sqlQuery = strings.TrimSpace(sqlQuery)
	if sqlQuery == "" {
		return fmt.Errorf("no SQL given: pass a statement, --input, or pipe it on stdin")
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	format := outputFormat(cmd, opts.Format, cmdCtx.Cfg)
	return executeAndRender(cmd.Context(), cmd.OutOrStdout(), cmdCtx.DB, sqlQuery, format)
}

// returnsRows reports whether stmt is expected to produce a result set.
func returnsRows(stmt string) bool {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToLower(strings.TrimLeft(fields[0], "(")) {
	case "select", "with", "values", "table", "show", "explain", "pragma":
		return true
	}
	return strings.Contains(strings.ToLower(stmt), " returning ")
}

func executeAndRender(ctx context.Context, w io.Writer, db database.DB, sqlQuery, format string) error {
	if !returnsRows(sqlQuery) {
		res, err := db.Exec(ctx, database.Raw(sqlQuery))
		if err != nil {
			return fmt.Errorf("statement failed: %w", err)
		}
		_, _ = fmt.Fprintf(w, "(%d rows affected)\n", res.RowsAffected)
		return nil
	}

	cols, rows, err := database.QueryColumns(ctx, db, database.Raw(sqlQuery))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return renderResults(w, cols, rows, format)
}

func newQueryTablesCommand(parentOpts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables in the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			format := outputFormat(cmd, parentOpts.Format, cmdCtx.Cfg)
			return executeAndRender(cmd.Context(), cmd.OutOrStdout(), cmdCtx.DB, listTablesSQL(cmdCtx.DB.Dialect()), format)
		},
	}
}

func listTablesSQL(d database.Dialect) string {
	if d.Name == database.SQLite.Name {
		return `SELECT name, type FROM sqlite_master
			WHERE type IN ('table', 'view')
			AND name NOT LIKE 'sqlite_%'
			AND name NOT LIKE 'goose_%'
			ORDER BY type DESC, name`
	}
	return `SELECT table_name AS name, lower(table_type) AS type FROM information_schema.tables
		WHERE table_schema = current_schema()
		AND table_name NOT LIKE 'goose_%'
		ORDER BY type, name`
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
