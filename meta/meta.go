// Package meta supplies the schema knowledge the resolver needs:
// which items form a category's key, and which categories are children
// of which parents. Where that knowledge comes from (a dictionary, a
// hand-written file) is the provider's business; the resolver only
// sees the two lookup calls.
package meta

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// A Link declares one parent relationship of a child category: the
// child's ChildItem refers to the parent's ParentItem.
type Link struct {
	ParentCategory string `yaml:"parent_category"`
	ParentItem     string `yaml:"parent_item"`
	ChildItem      string `yaml:"child_item"`
}

// Provider is what the resolver consumes. CategoryKeys returns the
// ordered key item names of a category, possibly none. ParentLinks
// returns every declared parent of a child, in declaration order.
type Provider interface {
	CategoryKeys(category string) []string
	ParentLinks(child string) []Link
}

// Static is a provider backed by plain maps, for tests and for
// callers that assemble their schema in code.
type Static struct {
	Keys  map[string][]string
	Links map[string][]Link
}

func (s *Static) CategoryKeys(category string) []string {
	return s.Keys[norm(category)]
}

func (s *Static) ParentLinks(child string) []Link {
	return s.Links[norm(child)]
}

// norm strips the tag underscore so "_entity" and "entity" name the
// same category, matching the parser's convention.
func norm(name string) string {
	return strings.TrimPrefix(name, "_")
}

// fileDoc is the YAML shape of a schema file:
//
//	categories:
//	  struct_asym:
//	    keys: [id]
//	    parents:
//	      - parent_category: entity
//	        parent_item: id
//	        child_item: entity_id
type fileDoc struct {
	Categories map[string]struct {
		Keys    []string `yaml:"keys"`
		Parents []Link   `yaml:"parents"`
	} `yaml:"categories"`
}

// Load reads a YAML schema file into a Static provider.
func Load(path string) (*Static, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc fileDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("meta: %s: %w", path, err)
	}
	s := &Static{
		Keys:  make(map[string][]string, len(doc.Categories)),
		Links: make(map[string][]Link, len(doc.Categories)),
	}
	for name, c := range doc.Categories {
		name = norm(name)
		if len(c.Keys) > 0 {
			s.Keys[name] = c.Keys
		}
		if len(c.Parents) > 0 {
			links := make([]Link, len(c.Parents))
			for i, l := range c.Parents {
				l.ParentCategory = norm(l.ParentCategory)
				links[i] = l
			}
			s.Links[name] = links
		}
	}
	return s, nil
}
