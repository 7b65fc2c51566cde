// Package easing implements timing curves used by transitions and
// animations: linear, step and cubic Bezier functions with CSS semantics.
package easing

import (
	"fmt"
	"math"
	"strconv"
)

// Kind selects the curve family of a Function.
type Kind int

const (
	KindLinear Kind = iota
	KindStepStart
	KindStepEnd
	KindCubicBezier
)

// Function maps normalized progress to eased progress. The zero value is
// Linear. Values are comparable with ==.
type Function struct {
	Kind   Kind
	Bezier CubicBezier
}

func Linear() Function    { return Function{Kind: KindLinear} }
func StepStart() Function { return Function{Kind: KindStepStart} }
func StepEnd() Function   { return Function{Kind: KindStepEnd} }

func Ease() Function      { return Bezier(0.25, 0.1, 0.25, 1.0) }
func EaseIn() Function    { return Bezier(0.42, 0.0, 1.0, 1.0) }
func EaseOut() Function   { return Bezier(0.0, 0.0, 0.58, 1.0) }
func EaseInOut() Function { return Bezier(0.42, 0.0, 0.58, 1.0) }

// Bezier returns a cubic Bezier curve with end points fixed at (0,0) and
// (1,1) and interior control points (x1,y1) and (x2,y2).
func Bezier(x1, y1, x2, y2 float64) Function {
	return Function{Kind: KindCubicBezier, Bezier: NewCubicBezier(x1, y1, x2, y2)}
}

var named = map[string]func() Function{
	"linear":      Linear,
	"ease":        Ease,
	"ease-in":     EaseIn,
	"ease-out":    EaseOut,
	"ease-in-out": EaseInOut,
	"step-start":  StepStart,
	"step-end":    StepEnd,
}

// Parse returns the function for an easing keyword.
func Parse(name string) (Function, bool) {
	if f, ok := named[name]; ok {
		return f(), true
	}
	return Function{}, false
}

// Apply evaluates the curve at x.
func (f Function) Apply(x float64) float64 {
	switch f.Kind {
	case KindStepStart:
		if x > 0 {
			return 1
		}
		return 0
	case KindStepEnd:
		if x < 1 {
			return 0
		}
		return 1
	case KindCubicBezier:
		switch {
		case x < 0:
			return 0
		case x > 1:
			return 1
		}
		return clamp(f.Bezier.sampleY(f.Bezier.solveX(x)), 0, 1)
	default:
		return clamp(x, 0, 1)
	}
}

// Name returns the keyword for the function, or a cubic-bezier()
// expression for curves that are not one of the presets.
func (f Function) Name() string {
	switch f.Kind {
	case KindStepStart:
		return "step-start"
	case KindStepEnd:
		return "step-end"
	case KindCubicBezier:
		for _, name := range []string{"ease", "ease-in", "ease-out", "ease-in-out"} {
			if named[name]() == f {
				return name
			}
		}
		x1, y1, x2, y2 := f.Bezier.ControlPoints()
		return fmt.Sprintf("cubic-bezier(%s, %s, %s, %s)", ftoa(x1), ftoa(y1), ftoa(x2), ftoa(y2))
	default:
		return "linear"
	}
}

func (f Function) String() string {
	return f.Name()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ControlPoints returns Bezier control points of the function. Linear
// reports the diagonal, step functions report zeros.
func (f Function) ControlPoints() (x1, y1, x2, y2 float64) {
	switch f.Kind {
	case KindCubicBezier:
		return f.Bezier.ControlPoints()
	case KindLinear:
		return 0, 0, 1, 1
	default:
		return 0, 0, 0, 0
	}
}
