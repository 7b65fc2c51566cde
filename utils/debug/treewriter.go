// Package debug builds indented plain text dumps for debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented lines. Output is split into sections
// separated by an empty line.
type TreeWriter struct {
	b      strings.Builder
	indent string
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{indent: "  "}
}

// WithIndent replaces the per-level indentation.
func (tw *TreeWriter) WithIndent(indent string) *TreeWriter {
	tw.indent = indent
	return tw
}

func (tw *TreeWriter) String() string {
	return tw.b.String()
}

// Section starts a new top level block.
func (tw *TreeWriter) Section(format string, args ...any) {
	if tw.b.Len() > 0 {
		tw.b.WriteByte('\n')
	}
	tw.Line(0, format, args...)
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(&tw.b, format, args...)
	tw.b.WriteByte('\n')
}

// Quoted writes label with Go-quoted value, empty value is left bare.
func (tw *TreeWriter) Quoted(depth int, label, value string) {
	tw.pad(depth)
	tw.b.WriteString(label)
	tw.b.WriteString(":")
	if value != "" {
		tw.b.WriteByte(' ')
		tw.b.WriteString(strconv.Quote(value))
	}
	tw.b.WriteByte('\n')
}

func (tw *TreeWriter) pad(depth int) {
	for range depth {
		tw.b.WriteString(tw.indent)
	}
}
