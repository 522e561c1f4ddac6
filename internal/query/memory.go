package query

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownField is returned when a plan names a field the schema does not declare.
var ErrUnknownField = errors.New("unknown field")

// MemorySource evaluates plans against a snapshot of records using the schema's accessors.
type MemorySource[T any] struct {
	schema   Schema[T]
	snapshot func() []T
}

// NewMemorySource builds a source; snapshot is called once per Count or Fetch.
func NewMemorySource[T any](schema Schema[T], snapshot func() []T) *MemorySource[T] {
	return &MemorySource[T]{schema: schema, snapshot: snapshot}
}

// SliceSource serves a fixed slice.
func SliceSource[T any](schema Schema[T], items []T) *MemorySource[T] {
	return NewMemorySource(schema, func() []T { return items })
}

func (s *MemorySource[T]) Count(ctx context.Context, p Plan) (int, error) {
	matched, err := s.filter(ctx, p)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

func (s *MemorySource[T]) Fetch(ctx context.Context, p Plan, offset, limit int) ([]T, error) {
	matched, err := s.filter(ctx, p)
	if err != nil {
		return nil, err
	}
	if p.Order != nil {
		f, ok := s.schema.Field(p.Order.Field)
		if !ok {
			return nil, fmt.Errorf("order by %q: %w", p.Order.Field, ErrUnknownField)
		}
		// id breaks ties in the sort direction, as the SQL sources do.
		tie, hasTie := s.schema.Field("id")
		hasTie = hasTie && f.Name() != "id"
		desc := p.Order.Dir == Desc
		slices.SortStableFunc(matched, func(a, b T) int {
			if desc {
				a, b = b, a
			}
			c := f.Compare(a, b)
			if c == 0 && hasTie {
				c = tie.Compare(a, b)
			}
			return c
		})
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []T{}, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]T, end-offset)
	copy(out, matched[offset:end])
	return out, nil
}

func (s *MemorySource[T]) filter(ctx context.Context, p Plan) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, clause := range p.Where {
		for _, c := range clause {
			if !s.schema.Has(c.Field) {
				return nil, fmt.Errorf("filter on %q: %w", c.Field, ErrUnknownField)
			}
		}
	}
	var out []T
	for _, item := range s.snapshot() {
		if s.matches(item, p.Where) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *MemorySource[T]) matches(item T, where []Clause) bool {
	for _, clause := range where {
		hit := false
		for _, c := range clause {
			f, _ := s.schema.Field(c.Field)
			if f.Match(item, c) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

var _ Source[int] = (*MemorySource[int])(nil)
