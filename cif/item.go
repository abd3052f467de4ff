// An Item is one named column. Its values are either (start,end)
// ranges into the shared arena, decoded on access, or strings stored
// eagerly (multiline values, anything added through the builder API).

package cif

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// val holds one value. start < 0 means str carries the value itself,
// otherwise [start,end) is a range into the arena.
type val struct {
	start, end int
	str        string
}

type Item struct {
	name  string
	arena *arena
	vals  []val

	// caches, dropped on any append
	decoded map[int]string // per-index decode results
	all     []string       // the bulk view
}

func newItem(name string, a *arena) *Item {
	return &Item{name: name, arena: a}
}

func (it *Item) Name() string { return it.name }

// Len is the number of values, independent of how many have been
// decoded.
func (it *Item) Len() int { return len(it.vals) }

// decodeRange turns a byte range into a value: utf-8 checked, white
// space trimmed. Anything malformed degrades to the empty string
// rather than failing; real files contain junk and a column full of
// good values should not be hostage to one bad one.
func decodeRange(buf []byte, start, end int) string {
	if start < 0 || end < start || end > len(buf) {
		return ""
	}
	b := buf[start:end]
	if !utf8.Valid(b) {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// Value decodes the i'th value only. Results are remembered, so
// hitting the same index twice does not decode twice.
func (it *Item) Value(i int) (string, error) {
	if i < 0 || i >= len(it.vals) {
		return "", &NotFoundError{Kind: "row", Name: strconv.Itoa(i)}
	}
	if it.all != nil {
		return it.all[i], nil
	}
	if s, ok := it.decoded[i]; ok {
		return s, nil
	}
	s := it.decodeOne(i)
	if it.decoded == nil {
		it.decoded = make(map[int]string)
	}
	it.decoded[i] = s
	return s, nil
}

func (it *Item) decodeOne(i int) string {
	v := it.vals[i]
	if v.start < 0 {
		return v.str
	}
	var buf []byte
	if it.arena != nil {
		buf = it.arena.buf
	}
	return decodeRange(buf, v.start, v.end)
}

// Values materialises the whole column. The result is cached; the
// writer and the exporters want everything anyway so there is no point
// doing it range by range.
func (it *Item) Values() []string {
	if it.all != nil {
		return it.all
	}
	all := make([]string, len(it.vals))
	for i := range it.vals {
		all[i] = it.decodeOne(i)
	}
	it.all = all
	return all
}

// appendRange and appendString are the only mutations. They drop the
// caches so no stale decode survives a write.
func (it *Item) appendRange(start, end int) {
	it.vals = append(it.vals, val{start: start, end: end})
	it.decoded = nil
	it.all = nil
}

func (it *Item) appendString(s string) {
	it.vals = append(it.vals, val{start: -1, end: -1, str: s})
	it.decoded = nil
	it.all = nil
}
