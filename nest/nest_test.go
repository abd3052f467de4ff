package nest_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucas-ebi/mmcif/cif"
	"github.com/lucas-ebi/mmcif/meta"
	"github.com/lucas-ebi/mmcif/nest"
)

func parseBlock(t *testing.T, src, block string) *cif.DataBlock {
	t.Helper()
	cont, err := cif.NewReader().Parse(strings.NewReader(src))
	require.NoError(t, err)
	b, err := cont.Block(block)
	require.NoError(t, err)
	return b
}

func structAsymSchema() *meta.Static {
	return &meta.Static{
		Links: map[string][]meta.Link{
			"struct_asym": {{ParentCategory: "entity", ParentItem: "id", ChildItem: "entity_id"}},
		},
	}
}

func TestResolveSingleChild(t *testing.T) {
	src := `data_T
loop_
_entity.id
_entity.type
1 polymer
loop_
_struct_asym.id
_struct_asym.entity_id
A 1
`
	tree := nest.New(structAsymSchema()).Resolve(parseBlock(t, src, "T"))
	want := map[string]any{
		"entity": map[string]any{
			"1": map[string]any{
				"type": "polymer",
				"struct_asym": map[string]any{
					"id": "A", "entity_id": "1",
				},
			},
		},
	}
	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

// One matching child nests as an object, two or more as an array in
// source order.
func TestAttachmentArity(t *testing.T) {
	src := `data_T
loop_
_entity.id
_entity.type
1 polymer
2 water
loop_
_struct_asym.id
_struct_asym.entity_id
A 1
B 2
C 2
`
	tree := nest.New(structAsymSchema()).Resolve(parseBlock(t, src, "T"))
	ent, ok := tree["entity"].(map[string]any)
	require.True(t, ok)

	one := ent["1"].(map[string]any)
	_, isObject := one["struct_asym"].(map[string]any)
	assert.True(t, isObject, "single child must nest as an object")

	two := ent["2"].(map[string]any)
	arr, isArray := two["struct_asym"].([]any)
	require.True(t, isArray, "several children must nest as an array")
	require.Len(t, arr, 2)
	assert.Equal(t, "B", arr[0].(map[string]any)["id"], "source order")
	assert.Equal(t, "C", arr[1].(map[string]any)["id"])
}

// A child row matching no parent is dropped from the tree but remains
// in the flat category.
func TestOrphanDropped(t *testing.T) {
	src := `data_T
loop_
_entity.id
_entity.type
1 polymer
loop_
_struct_asym.id
_struct_asym.entity_id
A 1
C 9
`
	b := parseBlock(t, src, "T")
	tree := nest.New(structAsymSchema()).Resolve(b)

	ent := tree["entity"].(map[string]any)["1"].(map[string]any)
	child := ent["struct_asym"].(map[string]any)
	assert.Equal(t, "A", child["id"], "only the matching row attaches")
	assert.NotContains(t, tree, "struct_asym", "children never appear at root")

	asym, err := b.Category("struct_asym")
	require.NoError(t, err)
	assert.Equal(t, 2, asym.RowCount(), "flat model keeps the orphan")
}

// Without a schema the fixed fallback table still relates the well
// known categories.
func TestFallbackTable(t *testing.T) {
	src := `data_F
loop_
_citation.id
_citation.title
prim 'A paper'
loop_
_citation_author.citation_id
_citation_author.name
prim 'Smith J'
prim 'Jones K'
`
	tree := nest.New(nil).Resolve(parseBlock(t, src, "F"))
	cit, ok := tree["citation"].(map[string]any)
	require.True(t, ok)
	row := cit["prim"].(map[string]any)
	authors, ok := row["citation_author"].([]any)
	require.True(t, ok)
	require.Len(t, authors, 2)
	assert.Equal(t, "Smith J", authors[0].(map[string]any)["name"])
}

// The declared key can point the row key away from id; the entity_id
// link still matches against the parent's plain id.
func TestEntityIDEquivalence(t *testing.T) {
	src := `data_T
loop_
_entity.id
_entity.type
1 polymer
loop_
_struct_asym.id
_struct_asym.entity_id
A 1
`
	prov := structAsymSchema()
	prov.Keys = map[string][]string{"entity": {"type"}}
	tree := nest.New(prov).Resolve(parseBlock(t, src, "T"))
	ent, ok := tree["entity"].(map[string]any)
	require.True(t, ok)
	row, ok := ent["polymer"].(map[string]any)
	require.True(t, ok, "row keyed by declared key item")
	assert.Contains(t, row, "struct_asym", "entity_id matched the parent id")
}

func TestLabelAsymIDEquivalence(t *testing.T) {
	src := `data_T
loop_
_asym.id
_asym.name
A chainA
loop_
_site.seq
_site.label_asym_id
7 A
`
	prov := &meta.Static{
		Keys: map[string][]string{"asym": {"name"}},
		Links: map[string][]meta.Link{
			"site": {{ParentCategory: "asym", ParentItem: "id", ChildItem: "label_asym_id"}},
		},
	}
	tree := nest.New(prov).Resolve(parseBlock(t, src, "T"))
	row := tree["asym"].(map[string]any)["chainA"].(map[string]any)
	assert.Contains(t, row, "site")
}

// A child declared reachable from two parents keeps the first
// established link only.
func TestFirstLinkWins(t *testing.T) {
	src := `data_T
_entity.id 1
_cell.id 1
loop_
_struct_asym.id
_struct_asym.entity_id
A 1
`
	prov := &meta.Static{
		Links: map[string][]meta.Link{
			"struct_asym": {
				{ParentCategory: "entity", ParentItem: "id", ChildItem: "entity_id"},
				{ParentCategory: "cell", ParentItem: "id", ChildItem: "entity_id"},
			},
		},
	}
	tree := nest.New(prov).Resolve(parseBlock(t, src, "T"))
	ent := tree["entity"].(map[string]any)["1"].(map[string]any)
	assert.Contains(t, ent, "struct_asym")
	cell := tree["cell"].(map[string]any)["1"].(map[string]any)
	assert.NotContains(t, cell, "struct_asym")
}

// With no id, name or code the row keys by its first attribute.
func TestKeyFallsBackToFirstAttribute(t *testing.T) {
	src := "data_T\n_exptl.method 'X-RAY DIFFRACTION'\n"
	tree := nest.New(nil).Resolve(parseBlock(t, src, "T"))
	exptl, ok := tree["exptl"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, exptl, "X-RAY DIFFRACTION")
}

// One broken category must not cost us the rest of the tree.
func TestBrokenCategorySkipped(t *testing.T) {
	cont := cif.NewContainer()
	b := cont.BlockOrCreate("B")
	ent := b.CategoryOrCreate("entity")
	ent.AppendValue("id", "1")
	ent.AppendValue("type", "polymer")
	bad := b.CategoryOrCreate("broken")
	bad.AppendValue("a", "1")
	bad.AppendValue("a", "2")
	bad.AppendValue("b", "only")

	tree := nest.New(nil).Resolve(b)
	assert.Contains(t, tree, "entity")
	assert.NotContains(t, tree, "broken")
	assert.NotContains(t, tree, "error")
}

type panickyProvider struct{}

func (panickyProvider) CategoryKeys(string) []string { panic("schema backend gone") }
func (panickyProvider) ParentLinks(string) []meta.Link {
	panic("schema backend gone")
}

// Total failure becomes an error payload, never a panic at the caller.
func TestErrorPayload(t *testing.T) {
	b := parseBlock(t, "data_T\n_entity.id 1\n", "T")
	tree := nest.New(panickyProvider{}).Resolve(b)
	msg, ok := tree["error"].(string)
	require.True(t, ok, "expected an error payload, got %v", tree)
	assert.Contains(t, msg, "schema backend gone")
	assert.Len(t, tree, 1)
}
