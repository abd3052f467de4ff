// The parser. One Reader reads one input. Lines are classified by
// their first bytes, in a fixed priority order: comment, block header,
// loop header, item line, then loop row or multiline continuation
// depending on state. Loop rows are committed atomically: either every
// declared tag gets a value or none does, which is what keeps all
// items of a category the same length.
//
// Line level problems never abort the parse. Real files from the
// archive contain the occasional broken line and the caller would
// rather have the other hundred thousand rows. We log what we skip.

package cif

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
)

// loopTag is one declared column of an open loop. A tag that was
// rejected (wrong category inside the loop) stays in the list with
// keep false so that row arity is preserved while its values are
// never stored.
type loopTag struct {
	item string
	keep bool
}

// pending is one uncommitted row value: either a byte range into the
// arena or, for multiline values, the assembled string.
type pending struct {
	start, end int
	str        string
	eager      bool
}

// Reader parses one mmcif input. It is not safe for concurrent use
// and not reusable across files; NewReader is cheap, make another.
type Reader struct {
	keep map[string]bool // category allow-list, nil means keep all
	log  *slog.Logger
	used bool

	cont    *Container
	block   *DataBlock
	cur     *Category
	curName string

	inLoop   bool
	loopTags []loopTag
	loopCat  string
	loopRef  *Category // category the open loop commits into

	row   []pending
	nvals int

	multiline bool
	mlLoop    bool // multiline scoped to a loop column, not a simple item
	mlItem    string
	mlBuf     []string

	scrtch [64]span
}

func NewReader() *Reader {
	return &Reader{log: slog.Default()}
}

// SetCategories restricts what the parser retains. Names may be given
// with or without the tag underscore. An empty list keeps everything.
func (r *Reader) SetCategories(names []string) {
	if len(names) == 0 {
		r.keep = nil
		return
	}
	r.keep = make(map[string]bool, len(names))
	for _, n := range names {
		r.keep[strings.TrimPrefix(n, "_")] = true
	}
}

func (r *Reader) SetLogger(l *slog.Logger) {
	if l != nil {
		r.log = l
	}
}

// ParseFile memory-maps path and parses it. Values stay as byte
// ranges into the mapping until accessed; Close the Container when
// done with every view derived from it.
func (r *Reader) ParseFile(path string) (*Container, error) {
	a, err := mapFile(path)
	if err != nil {
		return nil, err
	}
	return r.parse(a)
}

// Parse reads everything from rd and parses it. The caller decides
// what rd is: a file, a decompressor, an http body. There is no
// mapping to release but Close is still safe to call.
func (r *Reader) Parse(rd io.Reader) (*Container, error) {
	b, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	return r.parse(bytesArena(b))
}

func (r *Reader) parse(a *arena) (*Container, error) {
	if r.used {
		return nil, &ParseError{Desc: "cif: a Reader parses one input only; make a new one"}
	}
	r.used = true
	r.cont = &Container{blocks: make(map[string]*DataBlock), arena: a}
	scn := lineScanner{buf: a.buf}
	for scn.scan() {
		r.processLine(&scn)
	}
	r.discardPartialRow(scn.n, "end of input")
	return r.cont, nil
}

// processLine dispatches on the first bytes of the line. The order of
// the cases is load bearing: a "#" or "_" line wins even while a loop
// or multiline value is open.
func (r *Reader) processLine(ls *lineScanner) {
	line := ls.line
	switch {
	case len(line) > 0 && line[0] == '#':
		return
	case bytes.HasPrefix(line, []byte("data_")):
		r.handleBlockHeader(ls)
	case bytes.HasPrefix(line, []byte("loop_")):
		r.startLoop()
	case len(line) > 0 && line[0] == '_':
		r.handleItemLine(ls)
	case r.inLoop:
		if r.multiline && !r.mlLoop {
			r.handleMultiline(line)
			return
		}
		r.handleLoopRow(ls)
	case r.multiline:
		r.handleMultiline(line)
	}
}

// handleBlockHeader starts a new block, closing any pending loop or
// multiline state. A repeated data_X header replaces the old block.
func (r *Reader) handleBlockHeader(ls *lineScanner) {
	r.discardPartialRow(ls.n, "new data block")
	r.block = r.cont.putBlock(string(ls.line[len("data_"):]))
	r.cur, r.curName = nil, ""
	r.inLoop, r.loopCat, r.loopRef = false, "", nil
	r.loopTags = nil
	r.multiline, r.mlLoop = false, false
	r.mlBuf = nil
}

func (r *Reader) startLoop() {
	r.inLoop = true
	r.loopTags = r.loopTags[:0]
	r.loopCat, r.loopRef = "", nil
	r.row, r.nvals = r.row[:0], 0
}

// handleItemLine deals with every "_" line: an inline tag/value pair,
// a bare loop tag declaration, or the opener of a multiline value.
func (r *Reader) handleItemLine(ls *lineScanner) {
	toks, err := tokenize(ls.line, r.scrtch[:])
	if err != nil {
		r.logSkip(ls, "unparseable item line")
		return
	}
	if len(toks) == 2 {
		r.handleSimplePair(ls, toks[0], toks[1])
		return
	}
	r.handleLoopTagOrItem(ls, toks)
}

func (r *Reader) handleSimplePair(ls *lineScanner, tagSp, valSp span) {
	line := ls.line
	cat, item, ok := splitTag(string(line[tagSp.start:tagSp.end]))
	if !ok {
		r.logSkip(ls, "tag without category separator")
		return
	}
	if !r.keepCategory(cat) {
		return
	}
	if r.block == nil {
		r.logSkip(ls, "item before any data block")
		return
	}
	r.ensureCategory(cat)
	if valSp.end > valSp.start && line[valSp.start] == ';' {
		// Value continues on the following lines, scoped to this item.
		r.multiline, r.mlLoop = true, false
		r.mlItem = item
		r.mlBuf = nil
		return
	}
	r.cur.appendRange(item, ls.off+valSp.start, ls.off+valSp.end)
}

// handleLoopTagOrItem is the one-token and three-or-more-token item
// line. Inside an open loop header the tag joins the declared list;
// outside, three or more tokens store the rest of the line as one
// value and a lone tag is a malformed line.
func (r *Reader) handleLoopTagOrItem(ls *lineScanner, toks []span) {
	line := ls.line
	if len(toks) == 0 {
		return
	}
	cat, item, ok := splitTag(string(line[toks[0].start:toks[0].end]))
	if !ok {
		r.logSkip(ls, "tag without category separator")
		return
	}
	if r.block == nil {
		r.logSkip(ls, "item before any data block")
		return
	}
	if r.inLoop {
		if !r.keepCategory(cat) {
			return // excluded: the tag never joins the list
		}
		if r.loopCat == "" {
			r.loopCat = cat
			r.ensureCategory(cat)
			r.loopRef = r.cur
		}
		if cat != r.loopCat {
			// First tag won this loop. Keep the column for row arity
			// but never store its values.
			r.logSkip(ls, "loop tag from second category")
			r.loopTags = append(r.loopTags, loopTag{item: item})
			return
		}
		r.loopTags = append(r.loopTags, loopTag{item: item, keep: true})
		return
	}
	if len(toks) == 1 {
		r.logSkip(ls, "item line without value or loop")
		return
	}
	if !r.keepCategory(cat) {
		return
	}
	r.ensureCategory(cat)
	// Everything after the tag is the value, unsplit.
	rest := toks[1].start
	for rest > toks[0].end && !iswhite(line[rest-1]) {
		rest-- // a quoted second token: back up to include its quote
	}
	r.cur.appendRange(item, ls.off+rest, ls.off+len(line))
}

// handleLoopRow assembles tokens into the pending row and commits it
// once every declared tag has a value.
func (r *Reader) handleLoopRow(ls *lineScanner) {
	line := ls.line
	if r.multiline {
		if len(line) == 1 && line[0] == ';' {
			r.multiline, r.mlLoop = false, false
			r.row[len(r.row)-1] = pending{eager: true, str: strings.Join(r.mlBuf, "\n")}
			r.mlBuf = nil
			r.nvals++
			r.maybeCommit()
			return
		}
		r.mlBuf = append(r.mlBuf, string(line))
		return
	}
	toks, err := tokenize(line, r.scrtch[:])
	if err != nil {
		r.logSkip(ls, "unparseable loop row")
		return
	}
	for i := 0; len(r.row) < len(r.loopTags) && i < len(toks); i++ {
		sp := toks[i]
		if sp.end > sp.start && line[sp.start] == ';' {
			// This column's value continues on following lines.
			r.multiline, r.mlLoop = true, true
			r.mlBuf = append(r.mlBuf[:0], string(line[sp.start+1:sp.end]))
			r.row = append(r.row, pending{}) // placeholder until the closing ";"
			break
		}
		r.row = append(r.row, pending{start: ls.off + sp.start, end: ls.off + sp.end})
		r.nvals++
	}
	r.maybeCommit()
}

// maybeCommit pushes a full pending row into the loop's category, one
// value per kept tag, all or nothing.
func (r *Reader) maybeCommit() {
	if len(r.loopTags) == 0 || r.multiline || r.nvals != len(r.loopTags) {
		return
	}
	for i, tag := range r.loopTags {
		if !tag.keep {
			continue
		}
		p := r.row[i]
		if p.eager {
			r.loopRef.AppendValue(tag.item, p.str)
		} else {
			r.loopRef.appendRange(tag.item, p.start, p.end)
		}
	}
	r.row = r.row[:0]
	r.nvals = 0
}

// handleMultiline is the continuation of a simple item's multiline
// value. The value ends on a line that is exactly ";".
func (r *Reader) handleMultiline(line []byte) {
	if len(line) == 1 && line[0] == ';' {
		r.multiline = false
		if r.cur != nil {
			r.cur.AppendValue(r.mlItem, strings.Join(r.mlBuf, "\n"))
		}
		r.mlBuf = nil
		return
	}
	r.mlBuf = append(r.mlBuf, string(line))
}

// discardPartialRow drops leftover row tokens instead of committing a
// short row. Arity mismatches must not break the length invariant.
func (r *Reader) discardPartialRow(n int, why string) {
	if len(r.row) > 0 || r.nvals > 0 {
		r.log.Debug("discarding partial loop row",
			"line", n, "reason", why, "have", r.nvals, "want", len(r.loopTags))
		r.row, r.nvals = r.row[:0], 0
	}
}

func (r *Reader) ensureCategory(cat string) {
	if r.curName != cat || r.cur == nil {
		r.curName = cat
		r.cur = r.block.CategoryOrCreate(cat)
	}
}

func (r *Reader) keepCategory(cat string) bool {
	return r.keep == nil || r.keep[cat]
}

func (r *Reader) logSkip(ls *lineScanner, why string) {
	r.log.Debug("skipping line", "line", ls.n, "reason", why,
		"text", firstPart(string(ls.line)))
}

// splitTag breaks "_entity.id" into ("entity", "id"). A tag without
// the dot separator is malformed.
func splitTag(tag string) (cat, item string, ok bool) {
	cat, item, ok = strings.Cut(tag, ".")
	if !ok || len(cat) < 2 || item == "" {
		return "", "", false
	}
	return cat[1:], item, true
}
