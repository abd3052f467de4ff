// Package nest reconstructs the hierarchy that the flat relational
// model only implies. Categories reference each other through foreign
// key items; given the declared links (and a small fallback table for
// the well known ones) the resolver turns a data block into a nested
// tree ready for hierarchical serialization.
//
// The resolver is lenient the way the parser is: a category whose rows
// cannot be materialised is skipped and the rest of the tree is still
// produced. Only when nothing at all can be extracted does the caller
// get a single {"error": message} payload, never a panic.
package nest

import (
	"fmt"
	"log/slog"

	"github.com/lucas-ebi/mmcif/cif"
	"github.com/lucas-ebi/mmcif/meta"
)

// keyPriority is the item priority for choosing a row's key when the
// schema declares none. The order is a contract: downstream consumers
// depend on it, so do not reorder or extend it casually.
var keyPriority = []string{"id", "name", "code"}

// link is the established parent of one child category: the child's
// field item refers to the parent's key.
type link struct {
	field  string
	parent string
}

type Resolver struct {
	prov meta.Provider
	log  *slog.Logger
}

// New makes a resolver. prov may be nil, in which case only the
// fallback table relates categories.
func New(prov meta.Provider) *Resolver {
	return &Resolver{prov: prov, log: slog.Default()}
}

func (r *Resolver) SetLogger(l *slog.Logger) {
	if l != nil {
		r.log = l
	}
}

// Resolve builds the nested tree for one data block. Root categories
// map row keys to row data with children attached below them; a
// single matching child sits as an object, several as an array in
// source order. Rows matching no parent are absent from the tree but
// untouched in the flat model.
func (r *Resolver) Resolve(b *cif.DataBlock) map[string]any {
	tree, err := r.resolve(b)
	if err != nil {
		r.log.Error("relationship resolution failed", "block", b.Name(), "err", err)
		return map[string]any{"error": err.Error()}
	}
	return tree
}

func (r *Resolver) resolve(b *cif.DataBlock) (tree map[string]any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("resolving block %s: %v", b.Name(), p)
		}
	}()

	links, childrenOf := r.buildLinks(b)

	tree = make(map[string]any)
	for _, name := range b.CategoryNames() {
		if _, isChild := links[name]; isChild {
			continue // reachable through its parent, not a root
		}
		cat, err := b.Category(name)
		if err != nil {
			continue
		}
		rows, ok := safeRows(cat)
		if !ok {
			r.log.Warn("skipping category with unmaterialisable rows", "category", name)
			continue
		}
		byKey := make(map[string]any, len(rows))
		for _, row := range rows {
			key, keyItem := r.rowKey(cat, row)
			node := rowData(row)
			if keyItem != "" {
				delete(node, keyItem) // the key item becomes the map key
			}
			r.attachChildren(node, cat, row, key, b, links, childrenOf,
				map[string]bool{name: true})
			byKey[key] = node
		}
		tree[name] = byKey
	}
	return tree, nil
}

// buildLinks establishes one parent per child: schema-declared links
// first, in category then declaration order, then the fallback table
// for children still unlinked. The first established link wins, which
// is what makes resolution deterministic when a child is declared
// reachable from two parents.
func (r *Resolver) buildLinks(b *cif.DataBlock) (map[string]link, map[string][]string) {
	links := make(map[string]link)
	childrenOf := make(map[string][]string)
	add := func(child, parent, field string) {
		if _, ok := links[child]; ok {
			return
		}
		links[child] = link{field: field, parent: parent}
		childrenOf[parent] = append(childrenOf[parent], child)
	}
	if r.prov != nil {
		for _, child := range b.CategoryNames() {
			for _, l := range r.prov.ParentLinks(child) {
				add(child, l.ParentCategory, l.ChildItem)
			}
		}
	}
	for _, fb := range fallbackLinks {
		if hasCategory(b, fb.child) && hasCategory(b, fb.parent) {
			add(fb.child, fb.parent, fb.field)
		}
	}
	return links, childrenOf
}

// attachChildren finds the rows of every child category that refer to
// this parent row and hangs them below node, recursing into their own
// children. path holds the categories of the current descent so a
// cyclic link declaration can never recurse forever.
func (r *Resolver) attachChildren(node map[string]any, pcat *cif.Category, prow *cif.Row,
	pkey string, b *cif.DataBlock, links map[string]link,
	childrenOf map[string][]string, path map[string]bool) {

	var pid string
	hasID := prow.Has("id")
	if hasID {
		pid, _ = prow.Get("id")
	}

	for _, childName := range childrenOf[pcat.Name()] {
		if path[childName] {
			continue
		}
		ccat, err := b.Category(childName)
		if err != nil {
			continue
		}
		rows, ok := safeRows(ccat)
		if !ok {
			r.log.Warn("skipping category with unmaterialisable rows", "category", childName)
			continue
		}
		lf := links[childName].field
		var matched []map[string]any
		for _, crow := range rows {
			lv, err := crow.Get(lf)
			if err != nil {
				continue
			}
			// A link value matches the parent's key. Two fields get an
			// extra chance against the parent's plain id item even when
			// the key was taken from elsewhere; these are fixed
			// exceptions of the format, not a general rule.
			if lv != pkey &&
				!(hasID && lv == pid && (lf == "entity_id" || lf == "label_asym_id")) {
				continue
			}
			child := rowData(crow)
			ckey, _ := r.rowKey(ccat, crow)
			path[childName] = true
			r.attachChildren(child, ccat, crow, ckey, b, links, childrenOf, path)
			delete(path, childName)
			matched = append(matched, child)
		}
		switch len(matched) {
		case 0:
			// orphans stay in the flat model only
		case 1:
			node[childName] = matched[0]
		default:
			arr := make([]any, len(matched))
			for i, m := range matched {
				arr[i] = m
			}
			node[childName] = arr
		}
	}
}

// rowKey picks the value that identifies a row: the schema's declared
// key items first, then the fixed priority list, then the row's first
// attribute. A row with nothing at all keys as "unknown". The second
// return names the item the key came from, "" when there is none.
func (r *Resolver) rowKey(cat *cif.Category, row *cif.Row) (key, item string) {
	if r.prov != nil {
		for _, k := range r.prov.CategoryKeys(cat.Name()) {
			if row.Has(k) {
				v, _ := row.Get(k)
				return v, k
			}
		}
	}
	for _, k := range keyPriority {
		if row.Has(k) {
			v, _ := row.Get(k)
			return v, k
		}
	}
	if names := cat.ItemNames(); len(names) > 0 && row.Has(names[0]) {
		v, _ := row.Get(names[0])
		return v, names[0]
	}
	return "unknown", ""
}

func rowData(row *cif.Row) map[string]any {
	d := row.Data()
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// safeRows materialises the row views of a category, absorbing the
// row count panic so one broken category cannot take the whole tree
// down with it.
func safeRows(cat *cif.Category) (rows []*cif.Row, ok bool) {
	defer func() {
		if recover() != nil {
			rows, ok = nil, false
		}
	}()
	return cat.Rows(), true
}

func hasCategory(b *cif.DataBlock, name string) bool {
	_, err := b.Category(name)
	return err == nil
}
