package meta_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucas-ebi/mmcif/meta"
)

const schemaYAML = `categories:
  entity:
    keys: [id]
  struct_asym:
    keys: [id]
    parents:
      - parent_category: entity
        parent_item: id
        child_item: entity_id
`

func TestStatic(t *testing.T) {
	s := &meta.Static{
		Keys: map[string][]string{"entity": {"id"}},
		Links: map[string][]meta.Link{
			"struct_asym": {{ParentCategory: "entity", ParentItem: "id", ChildItem: "entity_id"}},
		},
	}
	assert.Equal(t, []string{"id"}, s.CategoryKeys("entity"))
	assert.Equal(t, []string{"id"}, s.CategoryKeys("_entity"), "underscored name")
	assert.Empty(t, s.CategoryKeys("unknown"))

	links := s.ParentLinks("struct_asym")
	require.Len(t, links, 1)
	assert.Equal(t, "entity", links[0].ParentCategory)
	assert.Empty(t, s.ParentLinks("entity"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(schemaYAML), 0644))

	s, err := meta.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, s.CategoryKeys("struct_asym"))
	links := s.ParentLinks("struct_asym")
	require.Len(t, links, 1)
	assert.Equal(t, meta.Link{
		ParentCategory: "entity", ParentItem: "id", ChildItem: "entity_id",
	}, links[0])
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories: ["), 0644))
	_, err := meta.Load(path)
	assert.Error(t, err)
}

func TestCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(schemaYAML), 0644))

	c := meta.NewCache()
	p1, err := c.Load(path)
	require.NoError(t, err)
	p2, err := c.Load(path)
	require.NoError(t, err)
	assert.Same(t, p1, p2, "unchanged file must come from cache")

	// Rewrite with a different modification time: must re-read.
	require.NoError(t, os.WriteFile(path, []byte(schemaYAML), 0644))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))
	p3, err := c.Load(path)
	require.NoError(t, err)
	assert.NotSame(t, p1, p3, "changed file must be re-read")
}

func TestCacheMissingFile(t *testing.T) {
	_, err := meta.NewCache().Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
