// Package owners sorts and pages the owners list. Owners are fetched once and
// handled entirely in memory.
package owners

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pders01/postdeck/internal/api"
	"github.com/pders01/postdeck/internal/collection"
)

type SortKey int

const (
	SortByName SortKey = iota
	SortByEmail
)

func (k SortKey) String() string {
	switch k {
	case SortByName:
		return "name"
	case SortByEmail:
		return "email"
	default:
		return "unknown"
	}
}

// ParseSortKey accepts "name" or "email", case-insensitively.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return SortByName, nil
	case "email":
		return SortByEmail, nil
	default:
		return 0, fmt.Errorf("unknown sort key %q (want name or email)", s)
	}
}

func (k SortKey) field(o api.Owner) string {
	if k == SortByEmail {
		return o.Email
	}
	return o.Name
}

// Less compares two owners on k, case-insensitively.
func (k SortKey) Less(a, b api.Owner) bool {
	return strings.ToLower(k.field(a)) < strings.ToLower(k.field(b))
}

type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// Indicator is the arrow shown next to the active column.
func (o Order) Indicator() string {
	if o == Descending {
		return "▼"
	}
	return "▲"
}

// Sorter tracks the active sort column and direction.
type Sorter struct {
	Key   SortKey
	Order Order
}

// Toggle flips the direction when key is already active, otherwise switches
// to key in ascending order.
func (s *Sorter) Toggle(key SortKey) {
	if s.Key == key {
		if s.Order == Ascending {
			s.Order = Descending
		} else {
			s.Order = Ascending
		}
		return
	}
	s.Key = key
	s.Order = Ascending
}

// Sort returns a sorted copy. Ties keep their input order.
func (s Sorter) Sort(list []api.Owner) []api.Owner {
	out := append([]api.Owner(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		if s.Order == Descending {
			return s.Key.Less(out[j], out[i])
		}
		return s.Key.Less(out[i], out[j])
	})
	return out
}

// Page sorts list and returns the requested window.
func (s Sorter) Page(list []api.Owner, page, pageSize int) []api.Owner {
	return collection.Slice(s.Sort(list), page, pageSize)
}

// Label renders a column header with the sort indicator when key is active.
func (s Sorter) Label(key SortKey, title string) string {
	if s.Key != key {
		return title
	}
	return title + " " + s.Order.Indicator()
}
