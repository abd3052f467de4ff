package cif

import (
	"fmt"
	"strconv"
)

// A Category is a named group of items. All populated items must share
// one length; that is the core invariant and the parser's atomic row
// commit is what maintains it.
type Category struct {
	name  string
	items map[string]*Item
	order []string // insertion order; the resolver's key fallback needs it
	arena *arena

	rows map[int]*Row // memoized row views
}

func newCategory(name string, a *arena) *Category {
	return &Category{
		name:  name,
		items: make(map[string]*Item),
		arena: a,
	}
}

func (c *Category) Name() string { return c.name }

// Len is the number of items (columns).
func (c *Category) Len() int { return len(c.items) }

// ItemNames returns item names in the order they first appeared.
func (c *Category) ItemNames() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Item is the strict read path.
func (c *Category) Item(name string) (*Item, error) {
	it, ok := c.items[name]
	if !ok {
		return nil, &NotFoundError{Kind: "item", Name: c.name + "." + name}
	}
	return it, nil
}

// ItemOrCreate is the write path; missing items spring into existence.
func (c *Category) ItemOrCreate(name string) *Item {
	if it, ok := c.items[name]; ok {
		return it
	}
	it := newItem(name, c.arena)
	c.items[name] = it
	c.order = append(c.order, name)
	c.invalidate()
	return it
}

// Values materialises one whole column.
func (c *Category) Values(name string) ([]string, error) {
	it, err := c.Item(name)
	if err != nil {
		return nil, err
	}
	return it.Values(), nil
}

// Value decodes a single cell.
func (c *Category) Value(name string, i int) (string, error) {
	it, err := c.Item(name)
	if err != nil {
		return "", err
	}
	return it.Value(i)
}

// AppendValue adds one value to an item, creating the item if needed.
// This is the builder entry point; the caller is responsible for
// keeping columns the same length, as the parser's row commit does.
func (c *Category) AppendValue(item, value string) {
	c.ItemOrCreate(item).appendString(value)
	c.invalidate()
}

// appendRange is the parser's lazy twin of AppendValue.
func (c *Category) appendRange(item string, start, end int) {
	c.ItemOrCreate(item).appendRange(start, end)
	c.invalidate()
}

func (c *Category) invalidate() {
	c.rows = nil
}

// RowCount returns the shared length of the items. Observing unequal
// lengths here means a row commit was not atomic, which is a bug in
// this package, so it panics rather than returning an error.
func (c *Category) RowCount() int {
	if len(c.order) == 0 {
		return 0
	}
	n := c.items[c.order[0]].Len()
	for _, name := range c.order[1:] {
		if l := c.items[name].Len(); l != n {
			panic(fmt.Sprintf("cif: category %s: item %s has %d values, %s has %d",
				c.name, c.order[0], n, name, l))
		}
	}
	return n
}

// Row returns the view for one row index. Views are memoized: asking
// for the same index again returns the identical instance until the
// category is next mutated.
func (c *Category) Row(i int) (*Row, error) {
	n := c.RowCount()
	if i < 0 || i >= n {
		return nil, &NotFoundError{Kind: "row", Name: c.name + "[" + strconv.Itoa(i) + "]"}
	}
	if r, ok := c.rows[i]; ok {
		return r, nil
	}
	if c.rows == nil {
		c.rows = make(map[int]*Row)
	}
	r := &Row{cat: c, idx: i}
	c.rows[i] = r
	return r, nil
}

// Rows returns all row views in order, reusing memoized ones.
func (c *Category) Rows() []*Row {
	n := c.RowCount()
	out := make([]*Row, n)
	for i := 0; i < n; i++ {
		r, _ := c.Row(i)
		out[i] = r
	}
	return out
}
