package cif

import (
	"strings"
)

// A DataBlock maps category names to categories. Names are stored
// without the leading underscore of the source tags, so the block that
// read "_entity.id" has a category called "entity".
type DataBlock struct {
	name  string
	cats  map[string]*Category
	order []string
	arena *arena
}

func newDataBlock(name string, a *arena) *DataBlock {
	return &DataBlock{
		name:  name,
		cats:  make(map[string]*Category),
		arena: a,
	}
}

func (b *DataBlock) Name() string { return b.name }

func (b *DataBlock) Len() int { return len(b.cats) }

// CategoryNames returns category names in first-seen order.
func (b *DataBlock) CategoryNames() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Category is the strict read path.
func (b *DataBlock) Category(name string) (*Category, error) {
	c, ok := b.cats[normCategory(name)]
	if !ok {
		return nil, &NotFoundError{Kind: "category", Name: name}
	}
	return c, nil
}

// CategoryOrCreate is the write path.
func (b *DataBlock) CategoryOrCreate(name string) *Category {
	name = normCategory(name)
	if c, ok := b.cats[name]; ok {
		return c
	}
	c := newCategory(name, b.arena)
	b.cats[name] = c
	b.order = append(b.order, name)
	return c
}

// normCategory strips the tag underscore so callers may say either
// "entity" or "_entity".
func normCategory(name string) string {
	return strings.TrimPrefix(name, "_")
}

// A Container holds the data blocks of one parse and the arena they
// all borrow from.
type Container struct {
	blocks map[string]*DataBlock
	order  []string
	arena  *arena
}

// NewContainer makes an empty container for building by hand. There
// is no arena, so every value added is eager.
func NewContainer() *Container {
	return &Container{blocks: make(map[string]*DataBlock)}
}

func (c *Container) Len() int { return len(c.blocks) }

// BlockNames returns block names in first-seen order.
func (c *Container) BlockNames() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Block is the strict read path. The "data_" prefix of the source
// header is accepted and stripped.
func (c *Container) Block(name string) (*DataBlock, error) {
	b, ok := c.blocks[strings.TrimPrefix(name, "data_")]
	if !ok {
		return nil, &NotFoundError{Kind: "block", Name: name}
	}
	return b, nil
}

// BlockOrCreate is the write path.
func (c *Container) BlockOrCreate(name string) *DataBlock {
	name = strings.TrimPrefix(name, "data_")
	if b, ok := c.blocks[name]; ok {
		return b
	}
	b := newDataBlock(name, c.arena)
	c.blocks[name] = b
	c.order = append(c.order, name)
	return b
}

// putBlock installs a fresh block, replacing any same-named one. The
// parser uses this: a repeated data_X header starts the block over.
func (c *Container) putBlock(name string) *DataBlock {
	name = strings.TrimPrefix(name, "data_")
	b := newDataBlock(name, c.arena)
	if _, ok := c.blocks[name]; !ok {
		c.order = append(c.order, name)
	}
	c.blocks[name] = b
	return b
}

// Close releases the memory mapping behind the parse. Every lazy
// value decoded afterwards comes back empty, so only call it once the
// whole result is finished with. Decoded and eager values survive.
func (c *Container) Close() error {
	return c.arena.close()
}
