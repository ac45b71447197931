package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/vcube/internal/ir"
)

// SQLCompiler compiles metadata queries to parameterized SQL for SQLite.
//
// CRITICAL: every Select ends in ORDER BY id so rows come back in insertion
// order. All values are parameterized, never interpolated; column and table
// names come only from the canonical headers.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a query to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(q Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}

	switch query := q.(type) {
	case Select:
		return c.compileSelect(query)
	case *Select:
		return c.compileSelect(*query)
	case Delete:
		return c.compileDelete(query)
	case *Delete:
		return c.compileDelete(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q Select) (string, []any, error) {
	header := q.Kind.Header()
	if header == nil {
		return "", nil, fmt.Errorf("unknown relation kind %d", int(q.Kind))
	}

	cols := make([]string, len(header))
	for i, field := range header {
		cols[i] = Column(field)
	}

	where, params, err := c.compileWhere(q.Kind, q.Filter)
	if err != nil {
		return "", nil, err
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		strings.Join(cols, ", "),
		q.Kind.String(),
		where,
		stableOrderKey())

	return sql, params, nil
}

func (c *SQLCompiler) compileDelete(q Delete) (string, []any, error) {
	if q.Kind.Header() == nil {
		return "", nil, fmt.Errorf("unknown relation kind %d", int(q.Kind))
	}
	where, params, err := c.compileWhere(q.Kind, q.Filter)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + q.Kind.String() + where, params, nil
}

func (c *SQLCompiler) compileWhere(kind ir.Kind, p Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, nil
	}
	sql, params, err := c.compilePredicate(kind, p)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return " WHERE " + sql, params, nil
}

// stableOrderKey returns the ORDER BY key. COLLATE BINARY keeps ordering
// identical across SQLite versions.
func stableOrderKey() string {
	return "id COLLATE BINARY ASC"
}

// compilePredicate compiles a Predicate to a WHERE clause fragment.
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(kind ir.Kind, p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case Equals:
		return c.compileEquals(kind, pred)
	case *Equals:
		return c.compileEquals(kind, *pred)
	case And:
		return c.compileAnd(kind, pred)
	case *And:
		return c.compileAnd(kind, *pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileEquals compiles field = ?. The term is bound in its N-Triples
// encoding, the form the store writes.
func (c *SQLCompiler) compileEquals(kind ir.Kind, eq Equals) (string, []any, error) {
	if !contains(kind.Header(), eq.Field) {
		return "", nil, fmt.Errorf("%s has no column for %s", kind, eq.Field)
	}
	return Column(eq.Field) + " = ?", []any{eq.Value.String()}, nil
}

func (c *SQLCompiler) compileAnd(kind ir.Kind, and And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // Always true (vacuous truth)
	}

	var sqlParts []string
	var allParams []any
	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(kind, pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}
	return strings.Join(sqlParts, " AND "), allParams, nil
}

// Column maps a header token to its SQL column name:
// "?CUBE_NAME" → "cube_name".
func Column(field string) string {
	return strings.ToLower(strings.TrimPrefix(field, "?"))
}

// Insert returns the parameterized INSERT for one row of kind. Params are
// taken from row in header order.
func Insert(kind ir.Kind) string {
	header := kind.Header()
	cols := make([]string, len(header))
	marks := make([]string, len(header))
	for i, field := range header {
		cols[i] = Column(field)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		kind.String(), strings.Join(cols, ", "), strings.Join(marks, ", "))
}
