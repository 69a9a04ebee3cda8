package collection

import "github.com/pders01/postdeck/internal/api"

// PageCache maps post ids to posts in the order they were first seen.
type PageCache struct {
	order []int
	items map[int]api.Post
}

func NewPageCache() *PageCache {
	return &PageCache{items: make(map[int]api.Post)}
}

func (c *PageCache) Has(id int) bool {
	_, ok := c.items[id]
	return ok
}

func (c *PageCache) Get(id int) (api.Post, bool) {
	p, ok := c.items[id]
	return p, ok
}

// Insert adds p unless its id is already cached. The first copy wins.
func (c *PageCache) Insert(p api.Post) bool {
	if c.Has(p.ID) {
		return false
	}
	c.items[p.ID] = p
	c.order = append(c.order, p.ID)
	return true
}

func (c *PageCache) Remove(id int) bool {
	if !c.Has(id) {
		return false
	}
	delete(c.items, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *PageCache) Len() int {
	return len(c.order)
}

// Values returns the cached posts in insertion order.
func (c *PageCache) Values() []api.Post {
	out := make([]api.Post, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}
