package tui

import (
	"fmt"

	"github.com/pders01/postdeck/internal/collection"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// fetchErrorText is what replaces the posts table when a fetch fails.
func fetchErrorText(err error) string {
	if collection.IsFetch(err) {
		return MsgPostsError
	}
	return err.Error()
}
