// Writing is the easy direction. The output is round-trippable at the
// value level, not byte-identical to any input: quoting style, spacing
// and comments are not preserved, only the values.

package cif

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Write emits the container as mmCIF text. Categories with more than
// one row become loop_ constructs; single-row categories are written
// as inline tag value pairs.
func Write(w io.Writer, c *Container) error {
	bw := bufio.NewWriter(w)
	for _, bname := range c.BlockNames() {
		b, err := c.Block(bname)
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "data_%s\n#\n", bname)
		for _, cname := range b.CategoryNames() {
			cat, err := b.Category(cname)
			if err != nil {
				return err
			}
			writeCategory(bw, cat)
			bw.WriteString("#\n")
		}
	}
	return bw.Flush()
}

func writeCategory(bw *bufio.Writer, c *Category) {
	names := c.ItemNames()
	if len(names) == 0 {
		return
	}
	if c.RowCount() > 1 {
		bw.WriteString("loop_\n")
		for _, n := range names {
			fmt.Fprintf(bw, "_%s.%s\n", c.name, n)
		}
		for _, row := range c.Rows() {
			writeRow(bw, row, names)
		}
		return
	}
	for _, n := range names {
		it := c.items[n]
		for i := 0; i < it.Len(); i++ {
			v, _ := it.Value(i)
			if needsMultiline(v) {
				fmt.Fprintf(bw, "_%s.%s ;\n%s\n;\n", c.name, n, v)
				continue
			}
			fmt.Fprintf(bw, "_%s.%s %s\n", c.name, n,
				strings.TrimRight(formatValue(v), " "))
		}
	}
}

// writeRow emits one loop row. Plain cells sit on the row line;
// a cell that needs a semicolon block interrupts it, and the next
// cell carries on after the block's terminator. The value between
// the delimiters is emitted untouched.
func writeRow(bw *bufio.Writer, row *Row, names []string) {
	var sb strings.Builder
	for _, n := range names {
		v, _ := row.Get(n)
		if !needsMultiline(v) {
			sb.WriteString(formatValue(v))
			continue
		}
		// The block opener must start its own line; a preceding
		// block's terminator already ends with one.
		if s := sb.String(); len(s) > 0 && !strings.HasSuffix(s, "\n") {
			sb.WriteByte('\n')
		}
		sb.WriteByte(';')
		// The opener line is tokenized on reparse, so blanks at the
		// start of the first line cannot be carried inside a loop;
		// shed them rather than the whole line.
		sb.WriteString(strings.TrimLeft(v, " \t"))
		sb.WriteString("\n;\n")
	}
	s := sb.String()
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	bw.WriteString(s)
}

func needsMultiline(v string) bool {
	return strings.ContainsRune(v, '\n') ||
		strings.HasPrefix(v, " ") || strings.HasPrefix(v, ";")
}

// formatValue renders one single-line value, trailing space included.
// Values with blanks or a leading quote or underscore are
// single-quoted; values needing a semicolon block never come here.
func formatValue(v string) string {
	if strings.ContainsRune(v, ' ') || strings.HasPrefix(v, "_") ||
		strings.HasPrefix(v, "'") || strings.HasPrefix(v, "\"") {
		return "'" + v + "' "
	}
	return v + " "
}
