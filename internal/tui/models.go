package tui

import (
	"github.com/pders01/postdeck/internal/api"
	"github.com/pders01/postdeck/internal/collection"
)

type View int

const (
	ViewOwners View = iota
	ViewPosts
	ViewReader
	ViewDeleteConfirm
)

func (v View) String() string {
	switch v {
	case ViewOwners:
		return "owners"
	case ViewPosts:
		return "posts"
	case ViewReader:
		return "reader"
	case ViewDeleteConfirm:
		return "delete"
	default:
		return "unknown"
	}
}

type ownersLoadedMsg struct {
	owners []api.Owner
	err    error
}

// postsFetchedMsg carries the state it was issued for so completions that
// belong to a closed posts screen can be ignored.
type postsFetchedMsg struct {
	state  *collection.State
	result collection.Result
	err    error
}

// postDeletedMsg carries the page the delete was issued from; the outcome
// only applies while the view is still on it.
type postDeletedMsg struct {
	state   *collection.State
	post    api.Post
	page    int
	outcome collection.Outcome
	err     error
}

type postRenderedMsg struct {
	postID  int
	content string
}

type errorMsg struct {
	err error
}
