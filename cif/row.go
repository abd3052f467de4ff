// A Row is a view {category, index}, not an owner of anything. All
// lookups go back through the category, which keeps invalidation in
// one place and avoids reference cycles between rows and columns.

package cif

type Row struct {
	cat *Category
	idx int
}

func (r *Row) Index() int { return r.idx }

func (r *Row) Category() *Category { return r.cat }

// Get returns the value of one item in this row.
func (r *Row) Get(item string) (string, error) {
	it, err := r.cat.Item(item)
	if err != nil {
		return "", err
	}
	return it.Value(r.idx)
}

// Has tells whether the item exists and covers this row.
func (r *Row) Has(item string) bool {
	it, ok := r.cat.items[item]
	return ok && r.idx < it.Len()
}

// Data returns every item value for this row.
func (r *Row) Data() map[string]string {
	out := make(map[string]string, len(r.cat.order))
	for _, name := range r.cat.order {
		it := r.cat.items[name]
		if r.idx < it.Len() {
			v, _ := it.Value(r.idx)
			out[name] = v
		}
	}
	return out
}
