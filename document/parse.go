package document

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ErrInvalidUTF8 is returned for input that is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("input is not valid UTF-8")

// Parser converts Markdown into document trees. It holds no per-call state
// and may be shared.
type Parser struct {
	md goldmark.Markdown
}

// NewParser returns a CommonMark parser without extensions.
func NewParser() *Parser {
	return &Parser{md: goldmark.New()}
}

var defaultParser = NewParser()

// Parse uses the default parser.
func Parse(src []byte) (*Node, error) {
	return defaultParser.Parse(src)
}

// Parse builds the tree for src.
func (p *Parser) Parse(src []byte) (*Node, error) {
	if !utf8.Valid(src) {
		off := 0
		for off < len(src) {
			r, size := utf8.DecodeRune(src[off:])
			if r == utf8.RuneError && size <= 1 {
				break
			}
			off += size
		}
		return nil, fmt.Errorf("%w: bad byte at offset %d", ErrInvalidUTF8, off)
	}

	root := p.md.Parser().Parse(text.NewReader(src))
	c := converter{src: src, lines: lineStarts(src)}
	return c.convert(root), nil
}

type converter struct {
	src   []byte
	lines []int
}

func (c *converter) convert(n ast.Node) *Node {
	out := &Node{Name: n.Kind().String(), Pos: c.position(n)}

	switch n := n.(type) {
	case *ast.Document:
		out.Kind = KindDocument
	case *ast.Heading:
		out.Kind = KindHeading
		out.Level = n.Level
	case *ast.ThematicBreak:
		out.Kind = KindThematicBreak
	case *ast.Paragraph:
		out.Kind = KindParagraph
	case *ast.Link:
		out.Kind = KindLink
		out.URL = c.unescape(n.Destination)
		out.Title = c.unescape(n.Title)
	case *ast.Image:
		out.Kind = KindImage
		out.URL = c.unescape(n.Destination)
		out.Title = c.unescape(n.Title)
	case *ast.TextBlock:
		out.Kind = KindOther
		// left behind by link reference definitions
		if n.Lines().Len() == 0 && !n.HasChildren() {
			out.Name = LinkReferenceDefinition
		}
	default:
		out.Kind = KindOther
	}
	if out.Pos == nil && n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
		out.Pos = c.gap(n)
	}

	out.Children = c.children(n)
	if out.Kind == KindImage {
		out.Alt = out.PlainText()
	}
	return out
}

// children converts child nodes merging adjacent text runs into one Text
// node.
func (c *converter) children(parent ast.Node) []*Node {
	var (
		out     []*Node
		raw     []byte
		start   = -1
		stop    = -1
		flushed = true
	)
	flush := func() {
		if flushed {
			return
		}
		node := &Node{Kind: KindText, Name: ast.KindText.String(), Value: c.unescape(raw)}
		if start >= 0 {
			node.Pos = c.span(start, stop)
		}
		out = append(out, node)
		raw, start, stop, flushed = nil, -1, -1, true
	}
	extend := func(s, e int) {
		if start < 0 || s < start {
			start = s
		}
		if e > stop {
			stop = e
		}
	}

	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		switch t := child.(type) {
		case *ast.Text:
			raw = append(raw, t.Segment.Value(c.src)...)
			if t.SoftLineBreak() || t.HardLineBreak() {
				raw = append(raw, '\n')
			}
			extend(t.Segment.Start, t.Segment.Stop)
			flushed = false
		case *ast.String:
			raw = append(raw, t.Value...)
			flushed = false
		default:
			flush()
			out = append(out, c.convert(child))
		}
	}
	flush()
	return out
}

func (c *converter) unescape(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	b = util.ResolveNumericReferences(b)
	b = util.ResolveEntityNames(b)
	return string(util.UnescapePunctuations(b))
}

// position computes the span covered by the node and all its descendants.
func (c *converter) position(n ast.Node) *Position {
	start, stop := -1, -1
	var visit func(ast.Node)
	visit = func(n ast.Node) {
		switch {
		case n.Type() == ast.TypeBlock:
			lines := n.Lines()
			for i := 0; lines != nil && i < lines.Len(); i++ {
				seg := lines.At(i)
				if start < 0 || seg.Start < start {
					start = seg.Start
				}
				if seg.Stop > stop {
					stop = seg.Stop
				}
			}
		default:
			if t, ok := n.(*ast.Text); ok {
				if start < 0 || t.Segment.Start < start {
					start = t.Segment.Start
				}
				if t.Segment.Stop > stop {
					stop = t.Segment.Stop
				}
			}
		}
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			visit(child)
		}
	}
	visit(n)
	if start < 0 {
		return nil
	}
	return c.span(start, stop)
}

// gap is the span of source text between positioned siblings of n, used
// for blocks that keep no source lines.
func (c *converter) gap(n ast.Node) *Position {
	start, stop := 0, len(c.src)
	for prev := n.PreviousSibling(); prev != nil; prev = prev.PreviousSibling() {
		if p := c.position(prev); p != nil {
			start = p.End.Offset
			break
		}
	}
	for next := n.NextSibling(); next != nil; next = next.NextSibling() {
		if p := c.position(next); p != nil {
			stop = p.Start.Offset
			break
		}
	}
	for start < stop && isSpace(c.src[start]) {
		start++
	}
	for stop > start && isSpace(c.src[stop-1]) {
		stop--
	}
	if start >= stop {
		return nil
	}
	return c.span(start, stop)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func (c *converter) span(start, stop int) *Position {
	for stop > start && (c.src[stop-1] == '\n' || c.src[stop-1] == '\r') {
		stop--
	}
	return &Position{Start: c.point(start), End: c.point(stop)}
}

func (c *converter) point(off int) Point {
	if off > len(c.src) {
		off = len(c.src)
	}
	line := sort.Search(len(c.lines), func(i int) bool { return c.lines[i] > off }) - 1
	if line < 0 {
		line = 0
	}
	return Point{
		Line:   line + 1,
		Column: utf8.RuneCount(c.src[c.lines[line]:off]) + 1,
		Offset: off,
	}
}

// lineStarts returns byte offsets at which every line of src begins.
func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
