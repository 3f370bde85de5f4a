package database

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var errUnboundedDelete = errors.New("refusing to delete without a predicate")

// builder accumulates SQL text and bind arguments for one statement.
type builder struct {
	d    Dialect
	sb   strings.Builder
	args []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return b.d.Placeholder(len(b.args))
}

func (b *builder) ident(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	b.sb.WriteString(name)
	return nil
}

func (b *builder) where(conds []Cond) error {
	if len(conds) == 0 {
		return nil
	}
	b.sb.WriteString(" WHERE ")
	return writeJoined(b, conds, " AND ")
}

func writeJoined(b *builder, conds []Cond, sep string) error {
	for i, c := range conds {
		if i > 0 {
			b.sb.WriteString(sep)
		}
		if err := c.write(b); err != nil {
			return err
		}
	}
	return nil
}

// Cond is a predicate used in WHERE clauses.
type Cond interface {
	write(b *builder) error
}

type eqCond struct {
	column string
	value  any
}

// Eq matches rows where column equals value.
func Eq(column string, value any) Cond {
	return eqCond{column: column, value: value}
}

func (c eqCond) write(b *builder) error {
	if err := b.ident(c.column); err != nil {
		return err
	}
	b.sb.WriteString(" = ")
	b.sb.WriteString(b.bind(c.value))
	return nil
}

type likeCond struct {
	column  string
	pattern string
}

// ILike matches rows where column matches pattern, ignoring case.
// Backslash escapes a wildcard in pattern; see EscapeLike.
func ILike(column, pattern string) Cond {
	return likeCond{column: column, pattern: pattern}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// EscapeLike makes s match literally inside a LIKE pattern.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (c likeCond) write(b *builder) error {
	if err := b.ident(c.column); err != nil {
		return err
	}
	b.sb.WriteString(" ")
	b.sb.WriteString(b.d.LikeOp)
	b.sb.WriteString(" ")
	b.sb.WriteString(b.bind(c.pattern))
	b.sb.WriteString(` ESCAPE '\'`)
	return nil
}

type orCond []Cond

// Or matches rows satisfying any of conds.
func Or(conds ...Cond) Cond {
	return orCond(conds)
}

func (c orCond) write(b *builder) error {
	if len(c) == 0 {
		return errors.New("empty OR condition")
	}
	b.sb.WriteString("(")
	if err := writeJoined(b, c, " OR "); err != nil {
		return err
	}
	b.sb.WriteString(")")
	return nil
}

type order struct {
	column string
	desc   bool
}

// SelectQuery reads rows from a single table.
type SelectQuery struct {
	table   string
	columns []string
	where   []Cond
	orderBy []order
	limit   int
	offset  int
}

// Select starts a query over table. No columns means all columns.
func Select(table string, columns ...string) *SelectQuery {
	return &SelectQuery{table: table, columns: columns}
}

// Where adds predicates joined with AND.
func (q *SelectQuery) Where(conds ...Cond) *SelectQuery {
	q.where = append(q.where, conds...)
	return q
}

// OrderBy adds a sort key.
func (q *SelectQuery) OrderBy(column string, desc bool) *SelectQuery {
	q.orderBy = append(q.orderBy, order{column: column, desc: desc})
	return q
}

// Limit caps the number of rows returned. Zero means no limit.
func (q *SelectQuery) Limit(n int) *SelectQuery {
	q.limit = n
	return q
}

// Offset skips the first n rows.
func (q *SelectQuery) Offset(n int) *SelectQuery {
	q.offset = n
	return q
}

// Build implements Descriptor.
func (q *SelectQuery) Build(d Dialect) (string, []any, error) {
	b := &builder{d: d}
	b.sb.WriteString("SELECT ")
	if len(q.columns) == 0 {
		b.sb.WriteString("*")
	}
	for i, col := range q.columns {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		if err := b.ident(col); err != nil {
			return "", nil, err
		}
	}
	b.sb.WriteString(" FROM ")
	if err := b.ident(q.table); err != nil {
		return "", nil, err
	}
	if err := b.where(q.where); err != nil {
		return "", nil, err
	}
	for i, o := range q.orderBy {
		if i == 0 {
			b.sb.WriteString(" ORDER BY ")
		} else {
			b.sb.WriteString(", ")
		}
		if err := b.ident(o.column); err != nil {
			return "", nil, err
		}
		if o.desc {
			b.sb.WriteString(" DESC")
		}
	}
	if q.limit > 0 {
		fmt.Fprintf(&b.sb, " LIMIT %d", q.limit)
	}
	if q.offset > 0 {
		fmt.Fprintf(&b.sb, " OFFSET %d", q.offset)
	}
	return b.sb.String(), b.args, nil
}

// CountQuery counts matching rows into a column named "total".
type CountQuery struct {
	table string
	where []Cond
}

// Count starts a row count over table.
func Count(table string) *CountQuery {
	return &CountQuery{table: table}
}

// Where adds predicates joined with AND.
func (q *CountQuery) Where(conds ...Cond) *CountQuery {
	q.where = append(q.where, conds...)
	return q
}

// Build implements Descriptor.
func (q *CountQuery) Build(d Dialect) (string, []any, error) {
	b := &builder{d: d}
	b.sb.WriteString("SELECT COUNT(*) AS total FROM ")
	if err := b.ident(q.table); err != nil {
		return "", nil, err
	}
	if err := b.where(q.where); err != nil {
		return "", nil, err
	}
	return b.sb.String(), b.args, nil
}

// InsertQuery adds one row to a table.
type InsertQuery struct {
	table   string
	columns []string
	values  []any
}

// InsertInto starts an insert into table.
func InsertInto(table string) *InsertQuery {
	return &InsertQuery{table: table}
}

// Set assigns value to column. Columns keep the order they were set in.
func (q *InsertQuery) Set(column string, value any) *InsertQuery {
	q.columns = append(q.columns, column)
	q.values = append(q.values, value)
	return q
}

// Build implements Descriptor.
func (q *InsertQuery) Build(d Dialect) (string, []any, error) {
	if len(q.columns) == 0 {
		return "", nil, errors.New("insert without columns")
	}
	b := &builder{d: d}
	b.sb.WriteString("INSERT INTO ")
	if err := b.ident(q.table); err != nil {
		return "", nil, err
	}
	b.sb.WriteString(" (")
	for i, col := range q.columns {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		if err := b.ident(col); err != nil {
			return "", nil, err
		}
	}
	b.sb.WriteString(") VALUES (")
	for i, v := range q.values {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.sb.WriteString(b.bind(v))
	}
	b.sb.WriteString(")")
	return b.sb.String(), b.args, nil
}

// DeleteQuery removes matching rows from a table.
type DeleteQuery struct {
	table string
	where []Cond
}

// DeleteFrom starts a delete over table. A predicate is required.
func DeleteFrom(table string) *DeleteQuery {
	return &DeleteQuery{table: table}
}

// Where adds predicates joined with AND.
func (q *DeleteQuery) Where(conds ...Cond) *DeleteQuery {
	q.where = append(q.where, conds...)
	return q
}

// Build implements Descriptor.
func (q *DeleteQuery) Build(d Dialect) (string, []any, error) {
	if len(q.where) == 0 {
		return "", nil, errUnboundedDelete
	}
	b := &builder{d: d}
	b.sb.WriteString("DELETE FROM ")
	if err := b.ident(q.table); err != nil {
		return "", nil, err
	}
	if err := b.where(q.where); err != nil {
		return "", nil, err
	}
	return b.sb.String(), b.args, nil
}

// RawQuery is a statement passed through unchanged.
type RawQuery struct {
	SQL  string
	Args []any
}

// Raw wraps a literal statement. The caller is responsible for using the
// placeholder style of the handle's dialect.
func Raw(sql string, args ...any) RawQuery {
	return RawQuery{SQL: sql, Args: args}
}

// Build implements Descriptor.
func (q RawQuery) Build(Dialect) (string, []any, error) {
	if strings.TrimSpace(q.SQL) == "" {
		return "", nil, errors.New("empty statement")
	}
	return q.SQL, q.Args, nil
}
