package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/postdeck/internal/api"
)

func TestNew_Seeding(t *testing.T) {
	s := New(3, 5)

	require.Len(t, s.owners, 3)
	for i, o := range s.owners {
		assert.Equal(t, i+1, o.ID)
		assert.NotEmpty(t, o.Email)
	}

	ids := map[int]bool{}
	for ownerID := 1; ownerID <= 3; ownerID++ {
		posts := s.Posts(ownerID)
		require.Len(t, posts, 5)
		for _, p := range posts {
			assert.False(t, ids[p.ID], "duplicate post id %d", p.ID)
			ids[p.ID] = true
			assert.Equal(t, ownerID, p.UserID)
		}
	}
}

func TestHandler_Routes(t *testing.T) {
	s := New(1, 6)
	h := s.Handler()

	tests := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/users", http.StatusOK},
		{http.MethodGet, "/posts?userId=1&page=1&limit=4", http.StatusOK},
		{http.MethodGet, "/posts?page=0", http.StatusBadRequest},
		{http.MethodGet, "/posts?userId=1&limit=0", http.StatusBadRequest},
		{http.MethodGet, "/posts?userId=1&page=-1", http.StatusBadRequest},
		{http.MethodDelete, "/posts/delete?postId=x", http.StatusBadRequest},
		{http.MethodDelete, "/posts/delete?postId=42", http.StatusNotFound},
		{http.MethodPost, "/users", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHandler_PostsWindow(t *testing.T) {
	s := New(1, 6)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts?userId=1&page=1&limit=4", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var page api.PostPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 6, page.TotalPosts)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, 5, page.Posts[0].ID)
	assert.Equal(t, 6, page.Posts[1].ID)
}

func TestHandler_DeleteShiftsPages(t *testing.T) {
	s := New(1, 6)
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/posts/delete?postId=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts?userId=1&page=0&limit=4", nil))

	var page api.PostPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 5, page.TotalPosts)
	ids := []int{}
	for _, p := range page.Posts {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int{1, 3, 4, 5}, ids)
}

func TestFailNextAndHits(t *testing.T) {
	s := New(1, 1)
	h := s.Handler()
	s.FailNext("/users", 2)

	for i, want := range []int{500, 500, 200} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
		assert.Equal(t, want, rec.Code, "request %d", i)
	}
	assert.Equal(t, 3, s.Hits("/users"))
	assert.Equal(t, 0, s.Hits("/posts"))
}
