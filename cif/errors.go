// Error types. Parse problems save the line number and the line we
// were trying to read. Model reads that miss return a NotFoundError,
// which is deliberately stricter than the lenient write path.

package cif

import (
	"strconv"
)

const maxMsgLen = 70

// NotFoundError reports a read against a block, category, item or row
// that does not exist.
type NotFoundError struct {
	Kind string // "block", "category", "item" or "row"
	Name string
}

func (e *NotFoundError) Error() string {
	return "cif: no such " + e.Kind + ": " + e.Name
}

// ParseError describes where in the input a fatal problem was seen.
// Line-level trouble is logged and skipped instead; this is only for
// the kind of thing we cannot continue from.
type ParseError struct {
	Line int    // line number, 1-based
	Text string // the line that provoked the error
	Desc string
}

func firstPart(s string) string {
	l := len(s)
	if l > maxMsgLen {
		l = maxMsgLen
	}
	return s[:l]
}

// Error includes the number of the last line read and any description
// of the error we have.
func (e *ParseError) Error() string {
	var errmsg string
	if e.Line != 0 {
		errmsg = "Line: " + strconv.Itoa(e.Line) + " "
	}
	errmsg += e.Desc
	if e.Text != "" {
		errmsg += "\nLine starting with\n" + firstPart(e.Text)
	}
	return errmsg
}
