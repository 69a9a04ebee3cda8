package tui

import (
	"fmt"
)

// Canonical short status messages used across the app.
const (
	MsgLoadingOwners = "Loading users…"
	MsgLoadingPosts  = "Loading posts…"
	MsgLoadingPost   = "Loading post…"
	MsgPostDeleted   = "Post deleted"
	MsgNoPosts       = "Posts were not found"
	MsgNoOwners      = "No users found."
	MsgOwnersError   = "Error fetching users. Please try again."
	MsgPostsError    = "Error fetching posts"
)

func MsgPageSize(n int) string {
	return fmt.Sprintf("Rows per page: %d", n)
}

func MsgSortedBy(field, order string) string {
	return fmt.Sprintf("Sorted by %s (%s)", field, order)
}

// MsgRange renders the "1–4 of 10" pagination summary.
func MsgRange(page, pageSize, total int) string {
	if total <= 0 || pageSize <= 0 {
		return "0–0 of 0"
	}
	from := page*pageSize + 1
	to := min((page+1)*pageSize, total)
	if from > total {
		from = total
	}
	return fmt.Sprintf("%d–%d of %d", from, to, total)
}

func MsgMatches(n int) string {
	if n == 1 {
		return "1 match"
	}
	return fmt.Sprintf("%d matches", n)
}
