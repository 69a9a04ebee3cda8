package search

import (
	"strings"

	"github.com/pders01/postdeck/internal/api"
)

// Substring matches the query as a case-insensitive substring of the title.
// The body is never consulted.
type Substring struct{}

func (Substring) Filter(posts []api.Post, query string) []api.Post {
	if query == "" {
		return posts
	}

	needle := strings.ToLower(query)
	out := make([]api.Post, 0, len(posts))
	for _, p := range posts {
		if matchTitle(p.Title, needle) {
			out = append(out, p)
		}
	}
	return out
}

// matchTitle expects needle to be lowercased already.
func matchTitle(title, needle string) bool {
	return strings.Contains(strings.ToLower(title), needle)
}
