// Package document turns Markdown text into a small generic tree that
// keeps only what script compilation looks at: headings, thematic breaks,
// paragraphs and their text, links and images. Everything else survives
// as an Other node carrying its original kind name.
package document

import (
	"fmt"
)

type Kind int

// LinkReferenceDefinition is the Name of Other nodes standing for link
// reference definitions.
const LinkReferenceDefinition = "LinkReferenceDefinition"

const (
	KindDocument Kind = iota
	KindHeading
	KindThematicBreak
	KindParagraph
	KindText
	KindLink
	KindImage
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "Document"
	case KindHeading:
		return "Heading"
	case KindThematicBreak:
		return "ThematicBreak"
	case KindParagraph:
		return "Paragraph"
	case KindText:
		return "Text"
	case KindLink:
		return "Link"
	case KindImage:
		return "Image"
	default:
		return "Other"
	}
}

// Point is a location in source text. Line and Column are 1-based, Column
// counts runes, Offset counts bytes from the start of the input.
type Point struct {
	Line   int
	Column int
	Offset int
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Position is the source span of a node, End is exclusive.
type Position struct {
	Start Point
	End   Point
}

func (p *Position) String() string {
	if p == nil {
		return "?"
	}
	return p.Start.String() + "-" + p.End.String()
}

// Node is one element of the document tree.
type Node struct {
	Kind Kind
	// Name is the Markdown node kind as reported by the parser, e.g.
	// "FencedCodeBlock" for an Other node.
	Name     string
	Pos      *Position
	Children []*Node

	// Value is the text of a Text node with escapes and character
	// references resolved.
	Value string
	// Level of a Heading.
	Level int
	// URL and Title of a Link or Image, Alt of an Image.
	URL   string
	Title string
	Alt   string
}

// SingleText reports whether the node has exactly one child and it is a Text
// node, returning that text.
func (n *Node) SingleText() (string, bool) {
	if len(n.Children) != 1 || n.Children[0].Kind != KindText {
		return "", false
	}
	return n.Children[0].Value, true
}

// PlainText concatenates the values of all Text descendants.
func (n *Node) PlainText() string {
	var out []byte
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Kind == KindText {
			out = append(out, n.Value...)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return string(out)
}
