//go:build bleve

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/postdeck/internal/api"
)

func TestIndexFilterMatchesSubstring(t *testing.T) {
	f, err := NewIndexFilter()
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	for _, q := range []string{"", "QUAS", "olest", "t e", "repudiandae", "e", ".*", "(", "sunt aut facere"} {
		want := Substring{}.Filter(samplePosts(), q)
		got := f.Filter(samplePosts(), q)
		assert.Equal(t, ids(want), ids(got), "query %q", q)
	}

	n, err := f.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestIndexFilterOnlyReturnsGivenPosts(t *testing.T) {
	f, err := NewIndexFilter()
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	all := samplePosts()
	f.Filter(all, "e")

	// Post 3 was indexed earlier but is no longer part of the list
	subset := []api.Post{all[0], all[3]}
	got := f.Filter(subset, "e")
	assert.Equal(t, []int{1, 4}, ids(got))
}

func TestNewBleve(t *testing.T) {
	f, err := New("bleve")
	require.NoError(t, err)
	_, ok := f.(*IndexFilter)
	assert.True(t, ok)
}
