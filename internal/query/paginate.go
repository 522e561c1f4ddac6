package query

import (
	"context"
	"encoding/json"
	"fmt"
)

// Page is one materialized page plus its metadata. It is read-only once built.
type Page[T any] struct {
	items      []T
	index      int
	size       int
	totalCount int
	totalPages int
}

// Items returns a copy of the page's records.
func (p Page[T]) Items() []T {
	out := make([]T, len(p.items))
	copy(out, p.items)
	return out
}

// Index is the 1-based page number after clamping.
func (p Page[T]) Index() int { return p.index }

// Size is the requested page size, not the number of items on this page.
func (p Page[T]) Size() int { return p.size }

// TotalCount is the number of records matching the query across all pages.
func (p Page[T]) TotalCount() int { return p.totalCount }

// TotalPages is at least 1, even for an empty result.
func (p Page[T]) TotalPages() int { return p.totalPages }

// HasPrevious reports whether a page precedes this one.
func (p Page[T]) HasPrevious() bool { return p.index > 1 }

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool { return p.index < p.totalPages }

type pageJSON[T any] struct {
	Items       []T  `json:"items"`
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalCount  int  `json:"total_count"`
	TotalPages  int  `json:"total_pages"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// MarshalJSON renders the page with its metadata; an empty page has "items": [].
func (p Page[T]) MarshalJSON() ([]byte, error) {
	items := p.items
	if items == nil {
		items = []T{}
	}
	return json.Marshal(pageJSON[T]{
		Items:       items,
		Page:        p.index,
		PageSize:    p.size,
		TotalCount:  p.totalCount,
		TotalPages:  p.totalPages,
		HasPrevious: p.HasPrevious(),
		HasNext:     p.HasNext(),
	})
}

// TotalPages is ceil(total/size), and 1 for an empty set so there is always a page to show.
func TotalPages(total, size int) int {
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// ClampPage pins a requested 1-based page number into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate counts the query, clamps the page number and fetches exactly that page.
// A non-positive size is a caller bug and panics. Source errors are returned unchanged.
func Paginate[T any](ctx context.Context, q Query[T], page, size int) (Page[T], error) {
	if size <= 0 {
		panic(fmt.Sprintf("query: page size must be positive, got %d", size))
	}
	total, err := q.Count(ctx)
	if err != nil {
		return Page[T]{}, err
	}
	pages := TotalPages(total, size)
	page = ClampPage(page, pages)

	var items []T
	if total > 0 {
		items, err = q.Fetch(ctx, (page-1)*size, size)
		if err != nil {
			return Page[T]{}, err
		}
	}
	return NewPage(items, page, size, total), nil
}

// NewPage builds a page from already materialized items, e.g. when a caller caches results.
func NewPage[T any](items []T, page, size, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	own := make([]T, len(items))
	copy(own, items)
	return Page[T]{
		items:      own,
		index:      page,
		size:       size,
		totalCount: total,
		totalPages: TotalPages(total, size),
	}
}
