package collection

import "sort"

// DeletedSet holds ids deleted during the session. It only grows.
type DeletedSet struct {
	ids map[int]struct{}
}

func NewDeletedSet() *DeletedSet {
	return &DeletedSet{ids: make(map[int]struct{})}
}

func (d *DeletedSet) Add(id int) {
	d.ids[id] = struct{}{}
}

func (d *DeletedSet) Contains(id int) bool {
	_, ok := d.ids[id]
	return ok
}

func (d *DeletedSet) Len() int {
	return len(d.ids)
}

// IDs returns the tombstoned ids in ascending order.
func (d *DeletedSet) IDs() []int {
	out := make([]int, 0, len(d.ids))
	for id := range d.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
