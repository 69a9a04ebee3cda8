package search

import (
	"fmt"

	"github.com/pders01/postdeck/internal/api"
)

// Filter narrows an ordered list of posts to those whose title matches
// query. An empty query returns the list unchanged. Order is preserved.
type Filter interface {
	Filter(posts []api.Post, query string) []api.Post
}

// DebugStatser provides lightweight stats for visibility/debugging.
// Implemented by engines that can report index doc counts, etc.
type DebugStatser interface {
	DocCount() (int, error)
}

// New returns the filter for the named engine ("substring" or "bleve").
func New(engine string) (Filter, error) {
	switch engine {
	case "", "substring":
		return Substring{}, nil
	case "bleve":
		return NewIndexFilter()
	default:
		return nil, fmt.Errorf("unknown search engine %q", engine)
	}
}
