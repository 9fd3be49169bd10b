// Package cache holds the lightweight bookmark views served by search.
package cache

import (
	"container/list"

	"github.com/aryannaik/bookmark-search/internal/bookmark"
)

type entry struct {
	id   string
	view bookmark.View
}

// Cache maps identifiers to bookmark views and iterates in insertion order.
// Overwriting an existing identifier keeps its position.
//
// A Cache is not safe for concurrent use.
type Cache struct {
	items map[string]*list.Element
	order *list.List
}

func New() *Cache {
	return &Cache{
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

// Set stores view under id. Any score on the view is cleared.
func (c *Cache) Set(id string, view bookmark.View) {
	view.Score = 0
	if el, ok := c.items[id]; ok {
		el.Value.(*entry).view = view
		return
	}
	c.items[id] = c.order.PushBack(&entry{id: id, view: view})
}

// Get returns the view stored under id.
func (c *Cache) Get(id string) (bookmark.View, bool) {
	el, ok := c.items[id]
	if !ok {
		return bookmark.View{}, false
	}
	return el.Value.(*entry).view, true
}

// Delete removes id and reports whether it was present.
func (c *Cache) Delete(id string) bool {
	el, ok := c.items[id]
	if !ok {
		return false
	}
	c.order.Remove(el)
	delete(c.items, id)
	return true
}

// Len returns the number of cached views.
func (c *Cache) Len() int {
	return len(c.items)
}

// Range calls fn for each entry in insertion order until fn returns false.
func (c *Cache) Range(fn func(id string, view bookmark.View) bool) {
	for el := c.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry)
		if !fn(e.id, e.view) {
			return
		}
	}
}

// Values returns a copy of every cached view in insertion order.
func (c *Cache) Values() []bookmark.View {
	out := make([]bookmark.View, 0, len(c.items))
	c.Range(func(_ string, view bookmark.View) bool {
		out = append(out, view)
		return true
	})
	return out
}
