package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSearchInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "alpha", "alpha"},
		{"surrounding spaces kept", " alpha ", " alpha "},
		{"control whitespace flattened", "al\tpha\none", "al pha one"},
		{"capped", strings.Repeat("a", 300), strings.Repeat("a", 256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeSearchInput(tt.input))
		})
	}
}

func TestTruncateEnd(t *testing.T) {
	assert.Equal(t, "", truncateEnd("abc", 0))
	assert.Equal(t, "abc", truncateEnd("abc", 3))
	assert.Equal(t, "ab…", truncateEnd("abcd", 3))
	assert.Equal(t, "…", truncateEnd("abcd", 1))
}
