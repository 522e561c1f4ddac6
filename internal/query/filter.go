package query

import "strings"

// Filter is one optional narrowing step. Inactive filters are skipped.
type Filter interface {
	Active() bool
	Clause() Clause
}

type searchFilter struct {
	fields []string
	term   string
}

// Search matches records whose any of the given text fields contains term, ignoring case.
// A blank term is inactive.
func Search(term string, fields ...string) Filter {
	return searchFilter{fields: fields, term: strings.TrimSpace(term)}
}

func (f searchFilter) Active() bool { return f.term != "" && len(f.fields) > 0 }

func (f searchFilter) Clause() Clause {
	c := make(Clause, 0, len(f.fields))
	for _, name := range f.fields {
		c = append(c, Criterion{Field: name, Op: OpContains, Value: f.term})
	}
	return c
}

type refFilter struct {
	field string
	id    int64
}

// Ref matches records whose foreign key equals id. A non-positive id is inactive.
func Ref(field string, id int64) Filter { return refFilter{field: field, id: id} }

func (f refFilter) Active() bool   { return f.id > 0 }
func (f refFilter) Clause() Clause { return Clause{{Field: f.field, Op: OpEq, Value: f.id}} }

type flagFilter struct {
	field string
	on    bool
}

// Flag matches records where the boolean field is true. A false flag is inactive.
func Flag(field string, on bool) Filter { return flagFilter{field: field, on: on} }

func (f flagFilter) Active() bool   { return f.on }
func (f flagFilter) Clause() Clause { return Clause{{Field: f.field, Op: OpEq, Value: true}} }

// Compose applies the active filters in order and reports how many were active.
func Compose[T any](q Query[T], filters ...Filter) (Query[T], int) {
	active := 0
	for _, f := range filters {
		if f == nil || !f.Active() {
			continue
		}
		q = q.Where(f.Clause()...)
		active++
	}
	return q, active
}
