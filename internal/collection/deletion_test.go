package collection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeletePost_ConcreteScenario(t *testing.T) {
	srv := newFakeServer(10)
	state := NewState(1)
	r := NewReconciler(state, srv)
	c := NewCoordinator(state, srv, nil)
	p := NewPaginator(state, nil)
	ctx := context.Background()

	require.NoError(t, r.FetchPage(ctx, 0, 4))
	assert.Equal(t, []int{1, 2, 3, 4}, postIDs(state.Materialize()))

	out, err := c.DeletePost(ctx, 2, Window{Page: 0, PageSize: 4})
	require.NoError(t, err)
	assert.Equal(t, Outcome{Page: 0, Refetch: false}, out)

	total, _ := state.Total()
	assert.Equal(t, 9, total)
	assert.Equal(t, []int{1, 3, 4}, postIDs(p.VisibleSlice(Window{Page: 0, PageSize: 4})))
}

func TestDeletePost_BackOffToPreviousPage(t *testing.T) {
	srv := newFakeServer(5)
	state := NewState(1)
	r := NewReconciler(state, srv)
	c := NewCoordinator(state, srv, nil)
	ctx := context.Background()

	require.NoError(t, r.FetchPage(ctx, 0, 4))
	require.NoError(t, r.FetchPage(ctx, 1, 4))
	fetches := srv.fetchCount()

	out, err := c.DeletePost(ctx, 5, Window{Page: 1, PageSize: 4})
	require.NoError(t, err)
	assert.Equal(t, Outcome{Page: 0}, out)
	assert.Equal(t, fetches, srv.fetchCount())
}

func TestDeletePost_RefetchEmptyFirstPage(t *testing.T) {
	srv := newFakeServer(6)
	state := NewState(1)
	r := NewReconciler(state, srv)
	c := NewCoordinator(state, srv, nil)
	ctx := context.Background()
	w := Window{Page: 0, PageSize: 4}

	require.NoError(t, r.FetchPage(ctx, 0, 4))

	for _, id := range []int{1, 2, 3} {
		out, err := c.DeletePost(ctx, id, w)
		require.NoError(t, err)
		assert.False(t, out.Refetch, "delete %d", id)
	}

	out, err := c.DeletePost(ctx, 4, w)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Page: 0, Refetch: true}, out)

	total, _ := state.Total()
	assert.Equal(t, 2, total)

	require.NoError(t, r.FetchPage(ctx, out.Page, 4))
	assert.Equal(t, []int{5, 6}, postIDs(NewPaginator(state, nil).VisibleSlice(w)))
}

func TestDeletePost_LastPostNoRefetch(t *testing.T) {
	srv := newFakeServer(2)
	state := NewState(1)
	r := NewReconciler(state, srv)
	c := NewCoordinator(state, srv, nil)
	ctx := context.Background()

	require.NoError(t, r.FetchPage(ctx, 0, 1))

	// Total drops to 1: nothing else worth fetching
	out, err := c.DeletePost(ctx, 1, Window{Page: 0, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, Outcome{Page: 0}, out)
}

func TestDeletePost_SearchWindowSize(t *testing.T) {
	srv := newFakeServer(10)
	state := NewState(1)
	r := NewReconciler(state, srv)
	c := NewCoordinator(state, srv, nil)
	ctx := context.Background()

	require.NoError(t, r.FetchPage(ctx, 0, 4))
	require.NoError(t, r.FetchPage(ctx, 1, 4))

	// Only post 5 matches "echo" in the cache, so the window held one item
	out, err := c.DeletePost(ctx, 5, Window{Page: 1, PageSize: 4, Query: "echo"})
	require.NoError(t, err)
	assert.Equal(t, Outcome{Page: 0}, out)
}

func TestDeletePost_FailureLeavesStateUntouched(t *testing.T) {
	srv := newFakeServer(4)
	state := NewState(1)
	r := NewReconciler(state, srv)
	c := NewCoordinator(state, srv, nil)
	ctx := context.Background()

	require.NoError(t, r.FetchPage(ctx, 0, 4))
	epoch := state.Epoch()

	srv.failDel = true
	out, err := c.DeletePost(ctx, 1, Window{Page: 0, PageSize: 4})
	require.Error(t, err)
	assert.True(t, IsDelete(err))
	assert.True(t, errors.Is(err, errBoom))
	assert.Equal(t, Outcome{Page: 0}, out)

	assert.Equal(t, []int{1, 2, 3, 4}, postIDs(state.Materialize()))
	assert.False(t, state.IsDeleted(1))
	total, _ := state.Total()
	assert.Equal(t, 4, total)
	assert.Equal(t, epoch, state.Epoch())
}

func TestDeletePost_TombstoneSurvivesRefetch(t *testing.T) {
	state := NewState(1)
	srv := newFakeServer(4)
	r := NewReconciler(state, srv)
	ctx := context.Background()
	require.NoError(t, r.FetchPage(ctx, 0, 4))

	// The server still returns the post after the delete succeeded
	c := NewCoordinator(state, deleterFunc(func(context.Context, int) error { return nil }), nil)
	_, err := c.DeletePost(ctx, 3, Window{PageSize: 4})
	require.NoError(t, err)

	require.NoError(t, r.FetchPage(ctx, 0, 4))
	assert.Equal(t, []int{1, 2, 4}, postIDs(state.Materialize()))
	assert.True(t, state.IsDeleted(3))
	assert.Equal(t, []int{3}, state.Deleted())
}

type deleterFunc func(ctx context.Context, id int) error

func (f deleterFunc) DeletePost(ctx context.Context, id int) error {
	return f(ctx, id)
}
