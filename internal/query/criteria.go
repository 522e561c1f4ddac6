// Package query builds deferred list queries: filters and ordering are collected into a Plan
// and only evaluated when a Source counts or fetches.
package query

// Operator is a neutral comparison understood by every Source.
type Operator string

const (
	// OpEq is exact equality (foreign keys, flags).
	OpEq Operator = "="
	// OpContains is a case-insensitive substring match on text fields.
	OpContains Operator = "CONTAINS"
)

// Criterion describes one neutral condition on a named field.
type Criterion struct {
	Field string
	Op    Operator
	Value any
}

// Clause is a disjunction: it matches when any of its criteria matches.
// Clauses in a Plan are AND-ed together.
type Clause []Criterion

// Direction is the sort direction token accepted from callers.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps a raw token to a Direction; anything but "desc" is ascending.
func ParseDirection(s string) Direction {
	if Direction(s) == Desc {
		return Desc
	}
	return Asc
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Order is a single sort key.
type Order struct {
	Field string
	Dir   Direction
}

// Plan is the materialization-ready description of a query.
type Plan struct {
	Where []Clause
	Order *Order
}

func (p Plan) clone() Plan {
	out := Plan{Where: make([]Clause, len(p.Where))}
	copy(out.Where, p.Where)
	if p.Order != nil {
		o := *p.Order
		out.Order = &o
	}
	return out
}
