package collection

import (
	"github.com/pders01/postdeck/internal/api"
	"github.com/pders01/postdeck/internal/search"
)

// Window is the page the user is looking at.
type Window struct {
	Page     int
	PageSize int
	Query    string
}

// Searching reports whether the query bypasses pagination.
func (w Window) Searching() bool {
	return w.Query != ""
}

// Slice returns the half-open range [page*size, page*size+size) of list,
// clamped to its bounds.
func Slice[T any](list []T, page, pageSize int) []T {
	if page < 0 || pageSize <= 0 {
		return []T{}
	}
	start := page * pageSize
	if start >= len(list) {
		return []T{}
	}
	end := min(start+pageSize, len(list))
	return list[start:end]
}

// PageCount is ceil(total/pageSize).
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Paginator derives visible windows from a State.
type Paginator struct {
	state  *State
	filter search.Filter
}

// NewPaginator uses the substring filter when filter is nil.
func NewPaginator(state *State, filter search.Filter) *Paginator {
	if filter == nil {
		filter = search.Substring{}
	}
	return &Paginator{state: state, filter: filter}
}

// Materialize returns the ordered, tombstone-free list of cached posts.
func (p *Paginator) Materialize() []api.Post {
	return p.state.Materialize()
}

// VisibleSlice returns every cached match while searching, otherwise the
// page of the materialized list selected by w.
func (p *Paginator) VisibleSlice(w Window) []api.Post {
	return visible(p.state.Materialize(), p.filter, w)
}

func visible(list []api.Post, filter search.Filter, w Window) []api.Post {
	if w.Searching() {
		return filter.Filter(list, w.Query)
	}
	return Slice(list, w.Page, w.PageSize)
}

// PageCount is derived from the server total, not from what is cached.
func (p *Paginator) PageCount(pageSize int) int {
	total, _ := p.state.Total()
	return PageCount(total, pageSize)
}
