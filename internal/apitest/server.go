// Package apitest serves an in-memory copy of the posts backend. It backs the
// mock command and the HTTP tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/pders01/postdeck/internal/api"
)

var (
	firstNames = []string{"Leanne", "Ervin", "Clementine", "Patricia", "Chelsey", "Dennis", "Kurtis", "Nicholas", "Glenna", "Clementina"}
	lastNames  = []string{"Graham", "Howell", "Bauch", "Lebsack", "Dietrich", "Schulist", "Weissnat", "Runolfsdottir", "Reichert", "DuBuque"}
	cities     = []string{"Gwenborough", "Wisokyburgh", "McKenziehaven", "South Elvis", "Roscoeview", "South Christy", "Howemouth", "Aliyaview", "Bartholomebury", "Lebsackbury"}
	words      = []string{"sunt", "qui", "est", "ea", "eum", "dolorem", "nesciunt", "magnam", "optio", "molestiae", "ullam", "odio", "fugiat", "quo", "aut"}
)

// Server is a fake posts backend. The zero value is not usable; use New.
type Server struct {
	mu       sync.Mutex
	owners   []api.Owner
	posts    map[int][]api.Post
	failures map[string]int
	hits     map[string]int
}

// New seeds owners and postsPerOwner posts for each of them. Post ids are
// assigned sequentially across owners starting at 1.
func New(owners, postsPerOwner int) *Server {
	s := &Server{
		posts:    make(map[int][]api.Post),
		failures: make(map[string]int),
		hits:     make(map[string]int),
	}

	nextID := 1
	for i := 0; i < owners; i++ {
		id := i + 1
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames)+i)%len(lastNames)]
		s.owners = append(s.owners, api.Owner{
			ID:    id,
			Name:  first + " " + last,
			Email: fmt.Sprintf("%s.%s@april.biz", first, last),
			Address: api.Address{
				Street:  fmt.Sprintf("%d Kulas Light", 100+i),
				Suite:   fmt.Sprintf("Apt. %d", 500+i),
				City:    cities[i%len(cities)],
				Zipcode: fmt.Sprintf("9%04d-%04d", i, 3874+i),
			},
		})
		for j := 0; j < postsPerOwner; j++ {
			s.posts[id] = append(s.posts[id], api.Post{
				ID:     nextID,
				Title:  title(nextID),
				Body:   fmt.Sprintf("%s %s %s", title(nextID+1), title(nextID+2), title(nextID+3)),
				UserID: id,
			})
			nextID++
		}
	}
	return s
}

func title(n int) string {
	return words[n%len(words)] + " " + words[(n*7)%len(words)] + " " + words[(n*3+1)%len(words)]
}

// SetPosts replaces an owner's posts.
func (s *Server) SetPosts(ownerID int, posts []api.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[ownerID] = append([]api.Post(nil), posts...)
}

// Posts returns a copy of an owner's remaining posts.
func (s *Server) Posts(ownerID int) []api.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Post(nil), s.posts[ownerID]...)
}

// FailNext makes the next n requests to path answer 500.
func (s *Server) FailNext(path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] += n
}

// Hits reports how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// Handler exposes the three backend routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", s.handleOwners)
	mux.HandleFunc("GET /posts", s.handlePosts)
	mux.HandleFunc("DELETE /posts/delete", s.handleDelete)
	return s.track(mux)
}

// Start runs the fake backend on a loopback httptest server.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.Handler())
}

func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		fail := s.failures[r.URL.Path] > 0
		if fail {
			s.failures[r.URL.Path]--
		}
		s.mu.Unlock()

		if fail {
			http.Error(w, "injected failure", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleOwners(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	owners := append([]api.Owner(nil), s.owners...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, owners)
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ownerID, err := strconv.Atoi(q.Get("userId"))
	if err != nil {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}
	page, err := intParam(q.Get("page"), 0)
	if err != nil || page < 0 {
		http.Error(w, "invalid page", http.StatusBadRequest)
		return
	}
	limit, err := intParam(q.Get("limit"), 4)
	if err != nil || limit <= 0 {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	all := s.posts[ownerID]
	start := min(page*limit, len(all))
	end := min(start+limit, len(all))
	result := api.PostPage{
		Posts:      append([]api.Post{}, all[start:end]...),
		TotalPosts: len(all),
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.Atoi(r.URL.Query().Get("postId"))
	if err != nil {
		http.Error(w, "postId is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ownerID, posts := range s.posts {
		for i, p := range posts {
			if p.ID == postID {
				s.posts[ownerID] = append(posts[:i:i], posts[i+1:]...)
				writeJSON(w, http.StatusOK, map[string]any{"deleted": postID})
				return
			}
		}
	}
	http.Error(w, "post not found", http.StatusNotFound)
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
