// Package cif reads files in mmcif/cif format into a relational model
// of data blocks, categories and items.
// Reading mmcif files is interesting because they are so big, but a
// caller usually wants only a few pieces. Two things keep the cost down.
// 1. The first character on a line is decisive. A data item starts with
// "_", a loop starts with loop_, a comment with #. We classify each
// line before doing any expensive tokenising.
// 2. We do not turn bytes into strings until somebody asks. The parser
// memory-maps the file and items remember (start,end) byte ranges into
// the mapping. Decoding happens on access and is cached. If you never
// look at the coordinates, you never pay for them.
//
// The model has strict/lenient asymmetry that callers should know
// about. Writes create things: BlockOrCreate, CategoryOrCreate and
// AppendValue will happily build structure that was not there before.
// Reads do not: Block, Category, Item, Row and Values return a
// *NotFoundError for anything missing. This is deliberate. A writer
// wants a builder, a reader wants to know its assumptions are wrong.
//
// Notes about the mmcif format...
// A question mark, ?, means a missing value. A dot, ., means not
// appropriate or deliberately left out. Both are stored as the literal
// character. Multi-line values are delimited by lines starting with ";"
// and we store them eagerly since a single byte range cannot hold them.
//
// A Reader is single use. Parse one file with it and make a new one for
// the next. The Container returned from ParseFile borrows the memory
// mapping, so call Close on it when every Category, Item and Row
// derived from it is finished with.
package cif
