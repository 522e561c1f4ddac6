package query

import "context"

// Source materializes plans. Implementations must not retain the plan after returning.
type Source[T any] interface {
	Count(ctx context.Context, p Plan) (int, error)
	Fetch(ctx context.Context, p Plan, offset, limit int) ([]T, error)
}

// Query is an immutable, lazily evaluated query over a Source.
// Where and OrderBy return new values; nothing touches the source until Count or Fetch.
type Query[T any] struct {
	src  Source[T]
	plan Plan
}

// From starts an unfiltered, unordered query.
func From[T any](src Source[T]) Query[T] {
	return Query[T]{src: src}
}

// Where adds a clause matching any of the given criteria. An empty call is a no-op.
func (q Query[T]) Where(criteria ...Criterion) Query[T] {
	if len(criteria) == 0 {
		return q
	}
	out := Query[T]{src: q.src, plan: q.plan.clone()}
	clause := make(Clause, len(criteria))
	copy(clause, criteria)
	out.plan.Where = append(out.plan.Where, clause)
	return out
}

// OrderBy sets the primary sort key, replacing any previous one.
func (q Query[T]) OrderBy(field string, dir Direction) Query[T] {
	out := Query[T]{src: q.src, plan: q.plan.clone()}
	out.plan.Order = &Order{Field: field, Dir: dir}
	return out
}

// Plan returns a copy of the composed plan.
func (q Query[T]) Plan() Plan { return q.plan.clone() }

// Count executes a count of the matching records.
func (q Query[T]) Count(ctx context.Context) (int, error) {
	return q.src.Count(ctx, q.plan.clone())
}

// Fetch executes the query and materializes at most take records after skipping skip.
func (q Query[T]) Fetch(ctx context.Context, skip, take int) ([]T, error) {
	return q.src.Fetch(ctx, q.plan.clone(), skip, take)
}
