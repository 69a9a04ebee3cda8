package collection

import (
	"context"
	"fmt"

	"github.com/pders01/postdeck/internal/debuglog"
	"github.com/pders01/postdeck/internal/search"
)

// PostDeleter removes a post on the server. *api.Client satisfies it.
type PostDeleter interface {
	DeletePost(ctx context.Context, postID int) error
}

// Outcome tells the caller where to go after a delete.
type Outcome struct {
	Page    int
	Refetch bool
}

// Coordinator deletes posts and rebalances the current page.
type Coordinator struct {
	state   *State
	deleter PostDeleter
	filter  search.Filter
}

// NewCoordinator uses the substring filter when filter is nil. It must be
// the same filter the view renders with.
func NewCoordinator(state *State, deleter PostDeleter, filter search.Filter) *Coordinator {
	if filter == nil {
		filter = search.Substring{}
	}
	return &Coordinator{state: state, deleter: deleter, filter: filter}
}

// DeletePost deletes id on the server and, on success, removes it locally,
// tombstones it and decrements the total.
//
// The returned Outcome is computed from the size of w's visible window
// before the removal:
//   - one item on a page after the first: step back a page
//   - one item on the first page with more than one post left: refetch it
//   - otherwise stay put
//
// On failure nothing changes and a KindDelete *Error is returned with an
// Outcome that keeps w.Page.
func (c *Coordinator) DeletePost(ctx context.Context, id int, w Window) (Outcome, error) {
	stay := Outcome{Page: w.Page}

	if err := c.deleter.DeletePost(ctx, id); err != nil {
		return stay, &Error{Kind: KindDelete, Op: fmt.Sprintf("delete post %d", id), Err: err}
	}

	s := c.state
	s.mu.Lock()
	windowSize := len(visible(s.materializeLocked(), c.filter, w))
	s.cache.Remove(id)
	s.deleted.Add(id)
	s.total--
	total := s.total
	s.epoch++
	s.mu.Unlock()

	debuglog.WithFields(map[string]any{
		"component": "deletion",
		"owner":     s.OwnerID(),
		"post":      id,
	}).Debugf("deleted; window had %d, total now %d", windowSize, total)

	switch {
	case windowSize == 1 && w.Page > 0:
		return Outcome{Page: w.Page - 1}, nil
	case windowSize == 1 && w.Page == 0 && total > 1:
		return Outcome{Page: 0, Refetch: true}, nil
	default:
		return stay, nil
	}
}
