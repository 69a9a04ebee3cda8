package collection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlice(t *testing.T) {
	list := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	tests := []struct {
		name     string
		page     int
		pageSize int
		want     []int
	}{
		{"first page", 0, 4, []int{0, 1, 2, 3}},
		{"middle page", 1, 4, []int{4, 5, 6, 7}},
		{"partial last page", 2, 4, []int{8, 9}},
		{"out of range", 3, 4, []int{}},
		{"negative page", -1, 4, []int{}},
		{"zero page size", 0, 0, []int{}},
		{"page larger than list", 0, 12, list},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slice(list, tt.page, tt.pageSize))
		})
	}
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(0, 4))
	assert.Equal(t, 1, PageCount(4, 4))
	assert.Equal(t, 2, PageCount(5, 4))
	assert.Equal(t, 3, PageCount(10, 4))
	assert.Equal(t, 0, PageCount(10, 0))
}

func TestPaginator_PageCountUsesServerTotal(t *testing.T) {
	srv := newFakeServer(10)
	state := NewState(1)
	r := NewReconciler(state, srv)
	p := NewPaginator(state, nil)

	assert.Equal(t, 0, p.PageCount(4))

	require.NoError(t, r.FetchPage(context.Background(), 0, 4))
	assert.Equal(t, 4, state.Cached())
	assert.Equal(t, 3, p.PageCount(4))
	assert.Equal(t, 2, p.PageCount(8))
}

func TestPaginator_SearchBypassesWindow(t *testing.T) {
	srv := newFakeServer(10)
	state := NewState(1)
	r := NewReconciler(state, srv)
	p := NewPaginator(state, nil)

	ctx := context.Background()
	require.NoError(t, r.FetchPage(ctx, 0, 4))
	require.NoError(t, r.FetchPage(ctx, 1, 4))

	// Titles cycle alpha, Bravo, charlie, Delta, echo; "a" is in all but echo
	got := p.VisibleSlice(Window{Page: 1, PageSize: 4, Query: "A"})
	assert.Equal(t, []int{1, 2, 3, 4, 6, 7, 8}, postIDs(got))

	// Empty query falls back to the page window
	got = p.VisibleSlice(Window{Page: 1, PageSize: 4})
	assert.Equal(t, []int{5, 6, 7, 8}, postIDs(got))
}

func TestPaginator_SearchNeverMatchesUnfetchedPages(t *testing.T) {
	srv := newFakeServer(10)
	state := NewState(1)
	r := NewReconciler(state, srv)
	p := NewPaginator(state, nil)

	require.NoError(t, r.FetchPage(context.Background(), 0, 4))

	// Post 5 ("echo") and post 10 ("echo") live on pages 1 and 2
	assert.Empty(t, p.VisibleSlice(Window{Page: 0, PageSize: 4, Query: "echo"}))

	require.NoError(t, r.FetchPage(context.Background(), 1, 4))
	assert.Equal(t, []int{5}, postIDs(p.VisibleSlice(Window{Page: 0, PageSize: 4, Query: "echo"})))
}

func TestPaginator_MaterializeSkipsTombstones(t *testing.T) {
	srv := newFakeServer(4)
	state := NewState(1)
	r := NewReconciler(state, srv)
	c := NewCoordinator(state, srv, nil)
	p := NewPaginator(state, nil)

	ctx := context.Background()
	require.NoError(t, r.FetchPage(ctx, 0, 4))
	_, err := c.DeletePost(ctx, 3, Window{PageSize: 4})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 4}, postIDs(p.Materialize()))
}
