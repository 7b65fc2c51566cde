package story

import (
	"fmt"
	"math"
)

// Position is a fractional placement inside the reference frame. Values
// are kept exactly as parsed and may fall outside [0,1].
type Position struct {
	X, Y float64
}

type SizeKind int

const (
	SizeContain SizeKind = iota
	SizeCover
	SizeFixedWidth
	SizeFixedHeight
	SizeFixed
)

var sizeKindNames = map[SizeKind]string{
	SizeContain:     "contain",
	SizeCover:       "cover",
	SizeFixedWidth:  "fixed-width",
	SizeFixedHeight: "fixed-height",
	SizeFixed:       "fixed",
}

func (k SizeKind) String() string {
	if s, ok := sizeKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("SizeKind(%d)", int(k))
}

// ParseSizeKind is the inverse of SizeKind.String.
func ParseSizeKind(name string) (SizeKind, error) {
	for k, s := range sizeKindNames {
		if s == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%s is not a valid size kind", name)
}

// Size describes how large an element is relative to the frame. Width is
// meaningful for fixed-width and fixed sizes, Height for fixed-height and
// fixed sizes. The zero value is Contain.
type Size struct {
	Kind          SizeKind
	Width, Height float64
}

func Contain() Size              { return Size{Kind: SizeContain} }
func Cover() Size                { return Size{Kind: SizeCover} }
func FixedWidth(w float64) Size  { return Size{Kind: SizeFixedWidth, Width: w} }
func FixedHeight(h float64) Size { return Size{Kind: SizeFixedHeight, Height: h} }
func Fixed(w, h float64) Size    { return Size{Kind: SizeFixed, Width: w, Height: h} }

func (s Size) String() string {
	switch s.Kind {
	case SizeFixedWidth:
		return fmt.Sprintf("%s(%g)", s.Kind, s.Width)
	case SizeFixedHeight:
		return fmt.Sprintf("%s(%g)", s.Kind, s.Height)
	case SizeFixed:
		return fmt.Sprintf("%s(%g, %g)", s.Kind, s.Width, s.Height)
	default:
		return s.Kind.String()
	}
}

type Location struct {
	Position Position
	Size     Size
}

func (l Location) String() string {
	return fmt.Sprintf("(%g, %g) %s", l.Position.X, l.Position.Y, l.Size)
}

// Rect is a rectangle in frame-normalized coordinates.
type Rect struct {
	Left, Top, Right, Bottom float64
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Rect lays the location out in a unit frame. Aspect is
// (imageWidth/frameWidth) / (imageHeight/frameHeight).
func (l Location) Rect(aspect float64) Rect {
	var width, height float64
	switch l.Size.Kind {
	case SizeCover:
		width, height = math.Max(1, aspect), math.Max(1, 1/aspect)
	case SizeFixedWidth:
		width, height = l.Size.Width, l.Size.Width/aspect
	case SizeFixedHeight:
		width, height = l.Size.Height*aspect, l.Size.Height
	case SizeFixed:
		width, height = l.Size.Width, l.Size.Height
	default:
		width, height = math.Min(1, aspect), math.Min(1, 1/aspect)
	}

	left := (1 - width) * l.Position.X
	top := (1 - height) * l.Position.Y
	return Rect{
		Left:   left,
		Top:    top,
		Right:  left + width,
		Bottom: top + height,
	}
}
