package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect covers the SQL differences between supported databases.
type Dialect interface {
	Name() string
	// Placeholder returns the n-th (1-based) bind parameter.
	Placeholder(n int) string
	// Fold lower-cases an expression with full Unicode case mapping.
	Fold(expr string) string
	// Contains renders a case-insensitive LIKE of column against a bound pattern.
	Contains(column, placeholder string) string
}

// SQLiteFold is the scalar function the sqlite driver must register: SQLite's own lower()
// only maps ASCII letters.
const SQLiteFold = "fold"

type postgresDialect struct{}

func (postgresDialect) Name() string             { return "postgres" }
func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }
func (postgresDialect) Fold(expr string) string  { return "lower(" + expr + ")" }
func (postgresDialect) Contains(col, ph string) string {
	return col + " ILIKE " + ph + ` ESCAPE '\'`
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string            { return "sqlite" }
func (sqliteDialect) Placeholder(int) string  { return "?" }
func (sqliteDialect) Fold(expr string) string { return SQLiteFold + "(" + expr + ")" }
func (d sqliteDialect) Contains(col, ph string) string {
	return d.Fold(col) + " LIKE " + d.Fold(ph) + ` ESCAPE '\'`
}

var (
	Postgres Dialect = postgresDialect{}
	SQLite   Dialect = sqliteDialect{}
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern wraps a literal term for a substring LIKE match.
func LikePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// RenderWhere turns the plan's clauses into a boolean SQL expression (without the WHERE keyword).
// Bind parameters are numbered from firstArg. Unknown fields are rejected, so only schema
// columns ever reach the SQL text.
func RenderWhere[T any](d Dialect, s Schema[T], where []Clause, firstArg int) (string, []any, error) {
	var (
		parts []string
		args  []any
		n     = firstArg
	)
	for _, clause := range where {
		if len(clause) == 0 {
			continue
		}
		ors := make([]string, 0, len(clause))
		for _, c := range clause {
			f, ok := s.Field(c.Field)
			if !ok {
				return "", nil, fmt.Errorf("filter on %q: %w", c.Field, ErrUnknownField)
			}
			ph := d.Placeholder(n)
			switch c.Op {
			case OpContains:
				term, _ := c.Value.(string)
				ors = append(ors, d.Contains(f.Column(), ph))
				args = append(args, LikePattern(term))
			case OpEq:
				ors = append(ors, f.Column()+" = "+ph)
				args = append(args, c.Value)
			default:
				return "", nil, fmt.Errorf("unsupported operator %q", c.Op)
			}
			n++
		}
		if len(ors) == 1 {
			parts = append(parts, ors[0])
		} else {
			parts = append(parts, "("+strings.Join(ors, " OR ")+")")
		}
	}
	return strings.Join(parts, " AND "), args, nil
}

// RenderOrder renders an ORDER BY list (without the keyword). Text columns are compared
// case-folded. tiebreak, when set, is appended in the same direction to keep page boundaries
// deterministic.
func RenderOrder[T any](d Dialect, s Schema[T], o *Order, tiebreak string) (string, error) {
	if o == nil {
		if tiebreak == "" {
			return "", nil
		}
		return tiebreak + " ASC", nil
	}
	f, ok := s.Field(o.Field)
	if !ok {
		return "", fmt.Errorf("order by %q: %w", o.Field, ErrUnknownField)
	}
	dir, nulls := "ASC", "NULLS FIRST"
	if o.Dir == Desc {
		dir, nulls = "DESC", "NULLS LAST"
	}
	key := f.Column()
	if f.Kind() == KindText {
		key = d.Fold(key)
	}
	out := key + " " + dir + " " + nulls
	if tiebreak != "" && tiebreak != f.Column() {
		out += ", " + tiebreak + " " + dir
	}
	return out, nil
}
