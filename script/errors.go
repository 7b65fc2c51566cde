package script

import (
	"errors"
	"fmt"

	"storyc/document"
)

// ErrorKind classifies compilation failures.
type ErrorKind int

const (
	// DocumentError means the Markdown could not be turned into a tree.
	DocumentError ErrorKind = iota
	// UnknownNode is a top-level block the walker does not handle.
	UnknownNode
	// InvalidHeading is a heading that is not exactly one text run.
	InvalidHeading
	InvalidLink
	InvalidImage
	NoFigureName
	InvalidWaitTime
	InvalidURL
	// UnsupportedInline is an inline element inside a paragraph other than
	// text, link or image.
	UnsupportedInline
)

var kindNames = [...]string{
	DocumentError:     "document error",
	UnknownNode:       "unknown node",
	InvalidHeading:    "invalid heading",
	InvalidLink:       "invalid link",
	InvalidImage:      "invalid image",
	NoFigureName:      "no figure name",
	InvalidWaitTime:   "invalid wait time",
	InvalidURL:        "invalid url",
	UnsupportedInline: "unsupported inline",
}

func (k ErrorKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseError is returned by the compiler. Detail carries the offending
// text where the kind has one. Pos is the span of the node being examined,
// nil when not known.
type ParseError struct {
	Kind   ErrorKind
	Detail string
	Pos    *document.Position
	err    error
}

func (e *ParseError) Error() string {
	var msg string
	switch {
	case e.Kind == DocumentError:
		msg = e.Kind.String() + ": " + e.Detail
	case e.Detail != "":
		msg = fmt.Sprintf("%s %q", e.Kind, e.Detail)
	default:
		msg = e.Kind.String()
	}
	if e.Pos != nil {
		msg += " at " + e.Pos.String()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.err
}

// KindOf extracts the kind of a ParseError anywhere in the chain of err.
func KindOf(err error) (ErrorKind, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}

func newError(kind ErrorKind, detail string, pos *document.Position) *ParseError {
	return &ParseError{Kind: kind, Detail: detail, Pos: pos}
}
