package nest

// fallbackLinks are well known parent relationships of the format,
// consulted in order and only for children the schema declares no
// link for. A declared link always wins over this table.
var fallbackLinks = []struct {
	child, parent, field string
}{
	{"citation_author", "citation", "citation_id"},
	{"citation_editor", "citation", "citation_id"},
	{"entity_poly", "entity", "entity_id"},
	{"entity_poly_seq", "entity", "entity_id"},
	{"struct_asym", "entity", "entity_id"},
	{"atom_site", "entity", "entity_id"},
}
