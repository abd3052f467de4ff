// lineScanner walks the arena buffer line by line. Unlike a
// bufio.Scanner it keeps the byte offsets of the current line, which
// is what lets token ranges survive as (start,end) pairs into the
// mapping. It also counts lines so error and log messages can say
// where they came from.

package cif

import (
	"bytes"
)

type lineScanner struct {
	buf  []byte
	pos  int
	n    int    // line number of the current line, 1-based
	line []byte // current line with trailing white space removed
	off  int    // byte offset of the start of the untrimmed line
}

const trailingWhite = " \t\r\v\f"

// scan advances to the next line. It returns false at end of input.
func (s *lineScanner) scan() bool {
	if s.pos >= len(s.buf) {
		return false
	}
	s.off = s.pos
	end := len(s.buf)
	if nl := bytes.IndexByte(s.buf[s.pos:], '\n'); nl >= 0 {
		end = s.pos + nl
		s.pos = end + 1
	} else {
		s.pos = end
	}
	s.n++
	s.line = bytes.TrimRight(s.buf[s.off:end], trailingWhite)
	return true
}
