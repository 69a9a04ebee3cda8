package collection

import (
	"context"
	"errors"
	"sync"

	"github.com/pders01/postdeck/internal/api"
)

var errBoom = errors.New("boom")

// fakeServer pages over an in-memory post list the way the backend does.
type fakeServer struct {
	mu        sync.Mutex
	posts     []api.Post
	failFetch bool
	failDel   bool
	fetches   []int
}

func newFakeServer(n int) *fakeServer {
	f := &fakeServer{}
	for i := 1; i <= n; i++ {
		f.posts = append(f.posts, api.Post{ID: i, Title: titleFor(i), UserID: 1})
	}
	return f
}

func titleFor(id int) string {
	titles := []string{"alpha", "Bravo", "charlie", "Delta", "echo"}
	return titles[(id-1)%len(titles)]
}

func (f *fakeServer) ListPosts(_ context.Context, _ int, page, limit int) (*api.PostPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, page)
	if f.failFetch {
		return nil, errBoom
	}
	return &api.PostPage{
		Posts:      append([]api.Post{}, Slice(f.posts, page, limit)...),
		TotalPosts: len(f.posts),
	}, nil
}

func (f *fakeServer) DeletePost(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDel {
		return errBoom
	}
	for i, p := range f.posts {
		if p.ID == id {
			f.posts = append(f.posts[:i:i], f.posts[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeServer) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetches)
}

func postIDs(posts []api.Post) []int {
	out := make([]int, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}
