package tui

import "strings"

// truncateEnd shortens s to at most max characters, appending an ellipsis
// if truncation occurs. Handles negative or tiny limits gracefully.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	return string(r[:limit-1]) + "…"
}

// oneLine collapses newlines and runs of whitespace so a value fits a table cell.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// sanitizeSearchInput turns newlines and tabs into spaces and caps the
// length. Spaces are kept, leading and trailing ones included, since they are
// part of the substring being matched.
func sanitizeSearchInput(input string) string {
	input = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(input)
	if r := []rune(input); len(r) > 256 {
		input = string(r[:256])
	}
	return input
}
