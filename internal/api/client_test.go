package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/postdeck/internal/api"
	"github.com/pders01/postdeck/internal/apitest"
)

func TestClient_ListOwners(t *testing.T) {
	backend := apitest.New(3, 0)
	srv := backend.Start()
	defer srv.Close()

	client := api.NewClient(srv.URL + "/")
	owners, err := client.ListOwners(context.Background())
	require.NoError(t, err)
	require.Len(t, owners, 3)

	assert.Equal(t, 1, owners[0].ID)
	assert.NotEmpty(t, owners[0].Name)
	assert.NotEmpty(t, owners[0].Address.City)
}

func TestClient_ListPosts(t *testing.T) {
	backend := apitest.New(2, 10)
	srv := backend.Start()
	defer srv.Close()

	client := api.NewClient(srv.URL)

	tests := []struct {
		name      string
		owner     int
		page      int
		limit     int
		wantIDs   []int
		wantTotal int
	}{
		{"first page", 1, 0, 4, []int{1, 2, 3, 4}, 10},
		{"last partial page", 1, 2, 4, []int{9, 10}, 10},
		{"past the end", 1, 5, 4, []int{}, 10},
		{"second owner", 2, 0, 8, []int{11, 12, 13, 14, 15, 16, 17, 18}, 10},
		{"unknown owner", 99, 0, 4, []int{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := client.ListPosts(context.Background(), tt.owner, tt.page, tt.limit)
			require.NoError(t, err)

			ids := make([]int, 0, len(page.Posts))
			for _, p := range page.Posts {
				ids = append(ids, p.ID)
				assert.Equal(t, tt.owner, p.UserID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantTotal, page.TotalPosts)
		})
	}
}

func TestClient_DeletePost(t *testing.T) {
	backend := apitest.New(1, 3)
	srv := backend.Start()
	defer srv.Close()

	client := api.NewClient(srv.URL)
	require.NoError(t, client.DeletePost(context.Background(), 2))
	assert.Len(t, backend.Posts(1), 2)

	err := client.DeletePost(context.Background(), 2)
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, http.MethodDelete, statusErr.Method)
}

func TestClient_ServerError(t *testing.T) {
	backend := apitest.New(1, 3)
	srv := backend.Start()
	defer srv.Close()

	backend.FailNext("/posts", 1)

	client := api.NewClient(srv.URL)
	_, err := client.ListPosts(context.Background(), 1, 0, 4)

	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "injected failure")

	// The failure is consumed
	_, err = client.ListPosts(context.Background(), 1, 0, 4)
	assert.NoError(t, err)
}

func TestClient_Headers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "postdeck-test/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "7", r.URL.Query().Get("userId"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "8", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"posts":[{"id":1,"title":"t","body":"b","userId":7}],"totalPosts":9}`))
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, api.WithUserAgent("postdeck-test/1.0"))
	page, err := client.ListPosts(context.Background(), 7, 1, 8)
	require.NoError(t, err)
	assert.Equal(t, 9, page.TotalPosts)
	assert.Equal(t, "t", page.Posts[0].Title)
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"posts": [`))
	}))
	defer srv.Close()

	_, err := api.NewClient(srv.URL).ListPosts(context.Background(), 1, 0, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding")
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, api.WithTimeout(50*time.Millisecond))
	_, err := client.ListOwners(context.Background())
	require.Error(t, err)
}

func TestClient_ContextCanceled(t *testing.T) {
	backend := apitest.New(1, 1)
	srv := backend.Start()
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := api.NewClient(srv.URL).ListOwners(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAddress_String(t *testing.T) {
	a := api.Address{Street: "Kulas Light", Suite: "Apt. 556", City: "Gwenborough", Zipcode: "92998-3874"}
	assert.Equal(t, "Kulas Light, Apt. 556, Gwenborough, 92998-3874", a.String())

	assert.Equal(t, "Gwenborough", api.Address{City: "Gwenborough"}.String())
	assert.Equal(t, "", api.Address{}.String())
}
