package query_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/member-crm/internal/query"
)

type person struct {
	ID     int64
	Name   string
	OrgID  *int64
	Active bool
	Joined time.Time
}

var personSchema = query.NewSchema(
	query.Int("id", "id", func(p person) int64 { return p.ID }),
	query.Text("name", "name", func(p person) string { return p.Name }),
	query.NullableInt("org_id", "organization_id", func(p person) *int64 { return p.OrgID }),
	query.Bool("active", "active", func(p person) bool { return p.Active }),
	query.Time("joined", "joined_on", func(p person) time.Time { return p.Joined }),
)

var personSorts = query.SortSpec{Fields: []string{"name", "joined"}, Default: "name"}

func ptr(v int64) *int64 { return &v }

func people(n int) []person {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]person, 0, n)
	for i := 1; i <= n; i++ {
		p := person{ID: int64(i), Name: fmt.Sprintf("Person %02d", i), Active: i%2 == 0, Joined: base.AddDate(0, 0, -i)}
		if i%3 == 0 {
			p.OrgID = ptr(7)
		}
		out = append(out, p)
	}
	return out
}

func TestPaginate_SplitsTwelveIntoThreePages(t *testing.T) {
	q := query.From[person](query.SliceSource(personSchema, people(12))).OrderBy("id", query.Asc)
	ctx := context.Background()

	sizes := []int{}
	for page := 1; page <= 3; page++ {
		p, err := query.Paginate(ctx, q, page, 5)
		require.NoError(t, err)
		assert.Equal(t, 3, p.TotalPages())
		assert.Equal(t, 12, p.TotalCount())
		sizes = append(sizes, len(p.Items()))
	}
	assert.Equal(t, []int{5, 5, 2}, sizes)
}

func TestPaginate_ClampsOutOfRangePage(t *testing.T) {
	q := query.From[person](query.SliceSource(personSchema, people(12))).OrderBy("id", query.Asc)

	p, err := query.Paginate(context.Background(), q, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Index())
	assert.Len(t, p.Items(), 2)
	assert.True(t, p.HasPrevious())
	assert.False(t, p.HasNext())

	p, err = query.Paginate(context.Background(), q, -4, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Index())
	assert.False(t, p.HasPrevious())
	assert.True(t, p.HasNext())
}

func TestPaginate_Properties(t *testing.T) {
	for n := 0; n <= 23; n++ {
		for size := 1; size <= 7; size++ {
			q := query.From[person](query.SliceSource(personSchema, people(n)))
			for _, req := range []int{-1, 0, 1, 2, 5, 100} {
				p, err := query.Paginate(context.Background(), q, req, size)
				if err != nil {
					t.Fatalf("n=%d size=%d page=%d: %v", n, size, req, err)
				}
				wantPages := (n + size - 1) / size
				if n == 0 {
					wantPages = 1
				}
				if p.TotalPages() != wantPages {
					t.Fatalf("n=%d size=%d: total pages %d, want %d", n, size, p.TotalPages(), wantPages)
				}
				if p.Index() < 1 || p.Index() > p.TotalPages() {
					t.Fatalf("n=%d size=%d page=%d: index %d out of range", n, size, req, p.Index())
				}
				if p.HasPrevious() != (p.Index() > 1) || p.HasNext() != (p.Index() < p.TotalPages()) {
					t.Fatalf("n=%d size=%d page=%d: inconsistent neighbours", n, size, req)
				}
			}
		}
	}
}

func TestPaginate_EmptySetIsOnePage(t *testing.T) {
	q := query.From[person](query.SliceSource(personSchema, nil))
	p, err := query.Paginate(context.Background(), q, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Index())
	assert.Equal(t, 1, p.TotalPages())
	assert.Equal(t, 0, p.TotalCount())
	assert.Empty(t, p.Items())
}

func TestPaginate_NonPositiveSizePanics(t *testing.T) {
	q := query.From[person](query.SliceSource(personSchema, people(3)))
	assert.Panics(t, func() { _, _ = query.Paginate(context.Background(), q, 1, 0) })
	assert.Panics(t, func() { _, _ = query.Paginate(context.Background(), q, 1, -5) })
}

type failingSource struct{ err error }

func (f failingSource) Count(context.Context, query.Plan) (int, error) { return 0, f.err }
func (f failingSource) Fetch(context.Context, query.Plan, int, int) ([]person, error) {
	return nil, f.err
}

func TestPaginate_PropagatesSourceError(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := query.Paginate(context.Background(), query.From[person](failingSource{err: boom}), 1, 10)
	assert.ErrorIs(t, err, boom)
}

func TestPage_ItemsAreCopied(t *testing.T) {
	p := query.NewPage([]int{1, 2, 3}, 1, 3, 3)
	items := p.Items()
	items[0] = 99
	assert.Equal(t, []int{1, 2, 3}, p.Items())
}

func TestPage_MarshalJSON(t *testing.T) {
	p := query.NewPage[int](nil, 1, 10, 0)
	b, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"page":1,"page_size":10,"total_count":0,"total_pages":1,"has_previous":false,"has_next":false}`, string(b))
}

func TestCompose_NoFiltersKeepsCount(t *testing.T) {
	src := query.SliceSource(personSchema, people(9))
	base := query.From[person](src)
	q, active := query.Compose(base, query.Search("  "), query.Ref("org_id", 0), query.Flag("active", false))
	assert.Equal(t, 0, active)

	want, err := base.Count(context.Background())
	require.NoError(t, err)
	got, err := q.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCompose_AndsActiveFilters(t *testing.T) {
	q, active := query.Compose(query.From[person](query.SliceSource(personSchema, people(12))),
		query.Ref("org_id", 7),
		query.Flag("active", true),
	)
	assert.Equal(t, 2, active)

	items, err := q.OrderBy("id", query.Asc).Fetch(context.Background(), 0, 100)
	require.NoError(t, err)
	ids := []int64{}
	for _, p := range items {
		ids = append(ids, p.ID)
	}
	if diff := cmp.Diff([]int64{6, 12}, ids); diff != "" {
		t.Fatalf("unexpected ids (-want +got):\n%s", diff)
	}
}

func TestCompose_SearchIsCaseInsensitive(t *testing.T) {
	src := query.SliceSource(personSchema, []person{{ID: 1, Name: "John Smith"}, {ID: 2, Name: "Jane Doe"}})
	q, active := query.Compose(query.From[person](src), query.Search("sMiTh", "name"))
	assert.Equal(t, 1, active)

	items, err := q.Fetch(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "John Smith", items[0].Name)
}

func TestCompose_UnmatchedFilterYieldsEmptyPage(t *testing.T) {
	q, _ := query.Compose(query.From[person](query.SliceSource(personSchema, people(5))), query.Search("nobody", "name"))
	p, err := query.Paginate(context.Background(), q, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, p.TotalCount())
	assert.Empty(t, p.Items())
}

func TestCompose_DoesNotMutateBase(t *testing.T) {
	base := query.From[person](query.SliceSource(personSchema, people(4)))
	_, _ = query.Compose(base, query.Flag("active", true))
	assert.Empty(t, base.Plan().Where)
}

func TestMemorySource_UnknownFieldFails(t *testing.T) {
	q := query.From[person](query.SliceSource(personSchema, people(2))).Where(query.Criterion{Field: "nope", Op: query.OpEq, Value: 1})
	_, err := q.Count(context.Background())
	assert.ErrorIs(t, err, query.ErrUnknownField)
}

func TestMemorySource_NullsSortFirst(t *testing.T) {
	items := []person{{ID: 1, OrgID: ptr(2)}, {ID: 2}, {ID: 3, OrgID: ptr(1)}}
	got, err := query.From[person](query.SliceSource(personSchema, items)).OrderBy("org_id", query.Asc).Fetch(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, []int64{got[0].ID, got[1].ID, got[2].ID})
}

func TestMemorySource_TextSortIgnoresCaseAndBreaksTiesByID(t *testing.T) {
	items := []person{{ID: 1, Name: "Zed"}, {ID: 2, Name: "bob"}, {ID: 3, Name: "alice"}, {ID: 4, Name: "Bob"}}
	ids := func(dir query.Direction) []int64 {
		got, err := query.From[person](query.SliceSource(personSchema, items)).OrderBy("name", dir).Fetch(context.Background(), 0, 10)
		require.NoError(t, err)
		out := make([]int64, len(got))
		for i, p := range got {
			out[i] = p.ID
		}
		return out
	}

	if diff := cmp.Diff([]int64{3, 2, 4, 1}, ids(query.Asc)); diff != "" {
		t.Errorf("asc (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{1, 4, 2, 3}, ids(query.Desc)); diff != "" {
		t.Errorf("desc (-want +got):\n%s", diff)
	}
}
