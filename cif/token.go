// Splitting lines at spaces and quotes, but returning byte ranges
// rather than copies, so the parser can remember where a value lives
// in the mapped file.

/* from https://www.iucr.org/resources/cif/spec/version1.1/cifsyntax
               character or string role
_ (underscore) identifies data name
#              identifies comment
'              delimits non-simple data values
"              delimits non-simple data values
; at beginning of line of text delimits non-simple data values
data_          identifies data block header (case-insensitive)
*/

package cif

import (
	"errors"
)

const (
	squote byte = '\''
	dquote byte = '"'
)

// span is a half-open byte range [start,end) within a line. The parser
// shifts it by the line's offset to get a range into the arena.
type span struct {
	start, end int
}

// iswhite only works for ascii spaces
var asciiSpace = [256]bool{
	'\t': true, '\n': true, '\v': true, '\f': true, '\r': true, ' ': true,
}

// iswhite returns true if a byte is on the list of white space characters.
func iswhite(b byte) bool {
	return asciiSpace[b] // Seems to be inlined, so it costs nothing.
}

// hasQuote tells us whether we can use the cheap splitter or have to
// run the quote-aware state machine.
func hasQuote(s []byte) bool {
	for _, c := range s {
		if c == squote || c == dquote {
			return true
		}
	}
	return false
}

// fieldSpans breaks a line into the ranges of its space separated
// words. It fills the scratch slice it is given instead of allocating.
// If the scratch slice is not big enough, fields will be lost. It sits
// in the middle of the row loop and was one of the main causes of
// memory allocations in an earlier version that copied strings about.
func fieldSpans(s []byte, scrtch []span) []span {
	var i, istart, iwrd int

	for i = 0; i < len(s); i++ { // leading spaces
		if iswhite(s[i]) {
			continue
		}
		break
	}

	if i == len(s) || cap(scrtch) == 0 {
		return nil
	}
	istart = i
	for {
		for { //                   in a word
			if iswhite(s[i]) {
				scrtch[iwrd] = span{istart, i}
				iwrd++
				if iwrd == cap(scrtch) {
					return scrtch[0:iwrd]
				}
				break
			}
			i++
			if i == len(s) {
				scrtch[iwrd] = span{istart, i}
				return scrtch[0 : iwrd+1]
			}
		}
		for i++; ; i++ { //        in spaces
			if i == len(s) {
				return scrtch[0:iwrd]
			}
			if !iswhite(s[i]) {
				break
			}
		}
		istart = i
	}
}

// isquote not only checks if we have a quote character, but also
func isquote(b byte, qtype *byte) bool { // stores its type
	if b == squote || b == dquote { //     (single or double) so we can
		*qtype = b  //                      look for the corresponding
		return true //                      closing quote
	}
	return false
}

type sInfo struct { // Holds the state of the state functions
	err     error
	ret     []span // what we will really return
	byteIn  []byte
	nxtIndx int
	qtype   byte // type of quote
}

type sfn func(i int, c byte, s *sInfo) sfn // state function

func sfnInQuote(i int, c byte, sInfo *sInfo) sfn { // in quoted region
	if c == sInfo.qtype {
		return sfnExitQuote
	}
	if c == '\n' {
		sInfo.err = errors.New("unterminated quote line: " + string(sInfo.byteIn))
		return sfnWhite
	}
	return sfnInQuote
}

func sfnExitQuote(i int, c byte, sInfo *sInfo) sfn {
	if iswhite(c) { // quote followed by white really ends a quoted region
		sInfo.ret = append(sInfo.ret, span{sInfo.nxtIndx, i - 1})
		return sfnWhite
	}
	return sfnInQuote // but if a character comes, we go back to quoted region
}

func sfnInText(i int, c byte, sInfo *sInfo) sfn {
	if iswhite(c) {
		sInfo.ret = append(sInfo.ret, span{sInfo.nxtIndx, i})
		return sfnWhite
	}
	return sfnInText
}

func sfnWhite(i int, c byte, sInfo *sInfo) sfn { // in white space region
	switch {
	case iswhite(c):
		return sfnWhite
	case isquote(c, &sInfo.qtype):
		sInfo.nxtIndx = i + 1
		return sfnInQuote
	default:
		sInfo.nxtIndx = i
		return sfnInText
	}
}

// splitQuoted takes a line and returns the ranges of its words,
// honouring single and double quoted regions. Quote characters are not
// part of the returned ranges, so decoding a range gives the value
// itself. We have a small finite state machine with four states. When
// we leave text, or a quote followed by a space, we save the range.
func splitQuoted(byteIn []byte, retIn []span) ([]span, error) {
	if len(byteIn) < 1 {
		return nil, nil
	}

	var sInfo = sInfo{ret: retIn[:0], byteIn: byteIn}

	state := sfnWhite
	for i, c := range byteIn {
		state = state(i, c, &sInfo)
	}
	state(len(byteIn), '\n', &sInfo) // end with newline, catches unterminated quotes
	if sInfo.err != nil {            // Just check at end, to avoid branches in the loop
		return nil, sInfo.err
	}
	return sInfo.ret, nil
}

// tokenize picks the cheap splitter when the line has no quote
// characters at all, which is the overwhelmingly common case in the
// big coordinate tables.
func tokenize(line []byte, scrtch []span) ([]span, error) {
	if !hasQuote(line) {
		return fieldSpans(line, scrtch), nil
	}
	return splitQuoted(line, scrtch)
}
