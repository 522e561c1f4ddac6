package service

import (
	"context"

	"github.com/maxviazov/member-crm/internal/query"
)

// ListRequest carries the raw listing parameters of one request.
// Refs and Flags are keyed by field token; entries the entity does not declare are ignored.
type ListRequest struct {
	Search   string
	Refs     map[string]int64
	Flags    map[string]bool
	Sort     string
	Dir      string
	Toggle   string
	Page     int
	PageSize int
}

// ListSpec declares which fields an entity lets callers search, filter and sort by.
type ListSpec struct {
	Search []string
	Refs   []string
	Flags  []string
	Sorts  query.SortSpec
}

// ListResult is a page plus everything a listing view needs to render its controls.
type ListResult[T any] struct {
	Page          query.Page[T]              `json:"page"`
	Sort          query.SortState            `json:"sort"`
	ActiveFilters int                        `json:"active_filters"`
	Filtering     bool                       `json:"filtering"`
	SortLinks     map[string]query.SortState `json:"sort_links"`
}

// filters builds the request's filters in declaration order: search first, then refs, then flags.
func (s ListSpec) filters(req ListRequest) []query.Filter {
	out := make([]query.Filter, 0, 1+len(s.Refs)+len(s.Flags))
	out = append(out, query.Search(req.Search, s.Search...))
	for _, f := range s.Refs {
		out = append(out, query.Ref(f, req.Refs[f]))
	}
	for _, f := range s.Flags {
		out = append(out, query.Flag(f, req.Flags[f]))
	}
	return out
}

// sortState resolves the requested sort and applies a pending toggle. A toggle to a different
// field sends the caller back to page 1.
func (s ListSpec) sortState(req ListRequest) (query.SortState, int) {
	st := s.Sorts.Resolve(req.Sort, req.Dir)
	page := req.Page
	if req.Toggle != "" {
		var reset bool
		st, reset = s.Sorts.Toggle(st, req.Toggle)
		if reset {
			page = 1
		}
	}
	return st, page
}

// list runs the listing flow: filters, then sort, then pagination.
func list[T any](ctx context.Context, src query.Source[T], spec ListSpec, req ListRequest, pageSize int) (ListResult[T], error) {
	st, page := spec.sortState(req)
	q, active := query.Compose(query.From(src), spec.filters(req)...)
	q, st = query.ApplySort(q, spec.Sorts, st.Field, string(st.Dir))

	p, err := query.Paginate(ctx, q, page, pageSize)
	if err != nil {
		return ListResult[T]{}, err
	}
	return ListResult[T]{
		Page:          p,
		Sort:          st,
		ActiveFilters: active,
		Filtering:     active > 0,
		SortLinks:     spec.Sorts.Links(st),
	}, nil
}
