package query

// SortSpec is the allow-list of sortable field tokens for one record type.
type SortSpec struct {
	Fields     []string
	Default    string
	DefaultDir Direction
}

// SortState is the active sort shown back to the caller.
type SortState struct {
	Field string    `json:"field"`
	Dir   Direction `json:"dir"`
}

func (s SortSpec) allowed(field string) bool {
	for _, f := range s.Fields {
		if f == field {
			return true
		}
	}
	return false
}

func (s SortSpec) defaultDir() Direction {
	if s.DefaultDir == "" {
		return Asc
	}
	return s.DefaultDir
}

// Resolve maps raw field and direction tokens to a valid sort.
// Unknown fields fall back to the default field; a blank direction uses the default direction.
func (s SortSpec) Resolve(field, dir string) SortState {
	st := SortState{Field: field, Dir: s.defaultDir()}
	if !s.allowed(field) {
		st.Field = s.Default
	}
	if dir != "" {
		st.Dir = ParseDirection(dir)
	}
	return st
}

// Toggle computes the sort after the caller selects clicked while current is active.
// Selecting the active field flips its direction. Any other field starts ascending and
// the caller must go back to the first page, reported by resetPage.
func (s SortSpec) Toggle(current SortState, clicked string) (next SortState, resetPage bool) {
	if !s.allowed(clicked) {
		clicked = s.Default
	}
	if clicked == current.Field {
		return SortState{Field: clicked, Dir: current.Dir.Flip()}, false
	}
	return SortState{Field: clicked, Dir: Asc}, true
}

// Links returns, per sortable field, the sort a caller gets by selecting it next.
func (s SortSpec) Links(current SortState) map[string]SortState {
	out := make(map[string]SortState, len(s.Fields))
	for _, f := range s.Fields {
		out[f], _ = s.Toggle(current, f)
	}
	return out
}

// ApplySort resolves the requested sort and orders the query by it.
func ApplySort[T any](q Query[T], spec SortSpec, field, dir string) (Query[T], SortState) {
	st := spec.Resolve(field, dir)
	return q.OrderBy(st.Field, st.Dir), st
}
