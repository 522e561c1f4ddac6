package query

import (
	"strings"
	"time"
)

// Kind tells sources how to compare a field.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindBool
	KindTime
)

// Field binds a field token to its storage column and a typed accessor.
// Exactly one accessor is set, matching Kind.
type Field[T any] struct {
	name   string
	column string
	kind   Kind

	text func(T) string
	num  func(T) (int64, bool)
	flag func(T) bool
	when func(T) (time.Time, bool)
}

// Text declares a string field.
func Text[T any](name, column string, get func(T) string) Field[T] {
	return Field[T]{name: name, column: column, kind: KindText, text: get}
}

// Int declares a non-null integer field.
func Int[T any](name, column string, get func(T) int64) Field[T] {
	return Field[T]{name: name, column: column, kind: KindInt, num: func(v T) (int64, bool) { return get(v), true }}
}

// NullableInt declares an integer field that may be NULL (optional foreign keys).
func NullableInt[T any](name, column string, get func(T) *int64) Field[T] {
	return Field[T]{name: name, column: column, kind: KindInt, num: func(v T) (int64, bool) {
		p := get(v)
		if p == nil {
			return 0, false
		}
		return *p, true
	}}
}

// Bool declares a boolean field.
func Bool[T any](name, column string, get func(T) bool) Field[T] {
	return Field[T]{name: name, column: column, kind: KindBool, flag: get}
}

// Time declares a non-null timestamp field.
func Time[T any](name, column string, get func(T) time.Time) Field[T] {
	return Field[T]{name: name, column: column, kind: KindTime, when: func(v T) (time.Time, bool) { return get(v), true }}
}

// NullableTime declares a timestamp field that may be NULL.
func NullableTime[T any](name, column string, get func(T) *time.Time) Field[T] {
	return Field[T]{name: name, column: column, kind: KindTime, when: func(v T) (time.Time, bool) {
		p := get(v)
		if p == nil {
			return time.Time{}, false
		}
		return *p, true
	}}
}

// Name is the token callers filter and sort by.
func (f Field[T]) Name() string { return f.name }

// Column is the storage column the token maps to.
func (f Field[T]) Column() string { return f.column }

// Kind reports how the field compares.
func (f Field[T]) Kind() Kind { return f.kind }

// Match evaluates a criterion against one record.
func (f Field[T]) Match(v T, c Criterion) bool {
	switch f.kind {
	case KindText:
		s := f.text(v)
		needle, ok := c.Value.(string)
		if !ok {
			return false
		}
		if c.Op == OpContains {
			return strings.Contains(strings.ToLower(s), strings.ToLower(needle))
		}
		return s == needle
	case KindInt:
		n, ok := f.num(v)
		want, okWant := toInt64(c.Value)
		return c.Op == OpEq && ok && okWant && n == want
	case KindBool:
		want, ok := c.Value.(bool)
		return c.Op == OpEq && ok && f.flag(v) == want
	case KindTime:
		t, ok := f.when(v)
		want, okWant := c.Value.(time.Time)
		return c.Op == OpEq && ok && okWant && t.Equal(want)
	}
	return false
}

// Compare orders two records by this field. Text compares case-folded, matching the SQL
// sources. NULLs sort before any value.
func (f Field[T]) Compare(a, b T) int {
	switch f.kind {
	case KindText:
		return strings.Compare(strings.ToLower(f.text(a)), strings.ToLower(f.text(b)))
	case KindInt:
		x, okx := f.num(a)
		y, oky := f.num(b)
		if c, done := compareNulls(okx, oky); done {
			return c
		}
		return cmpInt(x, y)
	case KindBool:
		x, y := f.flag(a), f.flag(b)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case KindTime:
		x, okx := f.when(a)
		y, oky := f.when(b)
		if c, done := compareNulls(okx, oky); done {
			return c
		}
		return x.Compare(y)
	}
	return 0
}

func compareNulls(okx, oky bool) (int, bool) {
	switch {
	case !okx && !oky:
		return 0, true
	case !okx:
		return -1, true
	case !oky:
		return 1, true
	}
	return 0, false
}

func cmpInt(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	}
	return 0, false
}

// Schema is the enumerated set of fields a record type exposes to filtering and sorting.
type Schema[T any] struct {
	fields map[string]Field[T]
}

// NewSchema indexes fields by token. Later duplicates replace earlier ones.
func NewSchema[T any](fields ...Field[T]) Schema[T] {
	s := Schema[T]{fields: make(map[string]Field[T], len(fields))}
	for _, f := range fields {
		s.fields[f.name] = f
	}
	return s
}

// Field looks up a field by token.
func (s Schema[T]) Field(name string) (Field[T], bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Has reports whether the token is known.
func (s Schema[T]) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}
