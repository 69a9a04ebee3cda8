package collection

import (
	"context"
	"fmt"

	"github.com/pders01/postdeck/internal/api"
	"github.com/pders01/postdeck/internal/debuglog"
)

// PostSource fetches one page of an owner's posts. *api.Client satisfies it.
type PostSource interface {
	ListPosts(ctx context.Context, ownerID, page, limit int) (*api.PostPage, error)
}

// Request is a fetch numbered by Seq and tagged with the epoch it was
// issued under.
type Request struct {
	Page     int
	PageSize int
	Seq      uint64
	Epoch    uint64
}

// Result summarizes an applied fetch.
type Result struct {
	Request Request
	Fetched int
	Added   int
	Total   int
}

type ReconcilerOption func(*Reconciler)

// WithDiscardStale controls whether completions overtaken by a delete are
// dropped. Enabled by default.
func WithDiscardStale(discard bool) ReconcilerOption {
	return func(r *Reconciler) {
		r.discardStale = discard
	}
}

// Reconciler merges fetched pages into a State.
type Reconciler struct {
	state        *State
	source       PostSource
	discardStale bool
	log          *debuglog.FieldLogger
}

func NewReconciler(state *State, source PostSource, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		state:        state,
		source:       source,
		discardStale: true,
		log: debuglog.WithFields(map[string]any{
			"component": "reconciler",
			"owner":     state.OwnerID(),
		}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) State() *State {
	return r.state
}

// NewRequest numbers a fetch and stamps it with the current epoch. Call it on
// the goroutine that orders user actions and hand the request to Do.
func (r *Reconciler) NewRequest(page, pageSize int) Request {
	seq, epoch := r.state.begin()
	return Request{Page: page, PageSize: pageSize, Seq: seq, Epoch: epoch}
}

// Do performs req and merges the result. On failure the state is untouched
// and a KindFetch *Error is returned.
func (r *Reconciler) Do(ctx context.Context, req Request) (Result, error) {
	op := fmt.Sprintf("fetch page %d", req.Page)
	if req.Page < 0 || req.PageSize <= 0 {
		return Result{Request: req}, &Error{Kind: KindFetch, Op: op, Err: ErrInvalidWindow}
	}

	page, err := r.source.ListPosts(ctx, r.state.OwnerID(), req.Page, req.PageSize)
	if err != nil {
		if r.discardStale && req.Epoch < r.state.Epoch() {
			r.log.Debugf("dropping failed stale fetch of page %d: %v", req.Page, err)
			return Result{Request: req}, ErrStale
		}
		return Result{Request: req}, &Error{Kind: KindFetch, Op: op, Err: err}
	}

	added, err := r.state.merge(req.Epoch, r.discardStale, page)
	if err != nil {
		r.log.Debugf("dropping stale page %d (epoch %d)", req.Page, req.Epoch)
		return Result{Request: req}, err
	}

	r.log.Debugf("page %d: fetched %d, added %d, total %d", req.Page, len(page.Posts), added, page.TotalPosts)
	return Result{
		Request: req,
		Fetched: len(page.Posts),
		Added:   added,
		Total:   page.TotalPosts,
	}, nil
}

// FetchPage issues and applies a fetch for page in one call.
func (r *Reconciler) FetchPage(ctx context.Context, page, pageSize int) error {
	_, err := r.Do(ctx, r.NewRequest(page, pageSize))
	return err
}
