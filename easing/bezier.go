package easing

import "math"

const (
	epsilon        = 1e-6
	newtonSteps    = 8
	bisectionSteps = 64
)

// CubicBezier keeps polynomial coefficients of the curve
//
//	x(t) = ((ax*t + bx)*t + cx)*t
//	y(t) = ((ay*t + by)*t + cy)*t
//
// together with the control points they were derived from.
type CubicBezier struct {
	X1, Y1, X2, Y2 float64

	ax, bx, cx float64
	ay, by, cy float64
}

func NewCubicBezier(x1, y1, x2, y2 float64) CubicBezier {
	cx := 3 * x1
	bx := 3*(x2-x1) - cx
	ax := 1 - cx - bx

	cy := 3 * y1
	by := 3*(y2-y1) - cy
	ay := 1 - cy - by

	return CubicBezier{
		X1: x1, Y1: y1, X2: x2, Y2: y2,
		ax: ax, bx: bx, cx: cx,
		ay: ay, by: by, cy: cy,
	}
}

// ControlPoints returns interior control points of the curve.
func (c CubicBezier) ControlPoints() (x1, y1, x2, y2 float64) {
	return c.X1, c.Y1, c.X2, c.Y2
}

// Coefficients returns polynomial coefficients (ax, bx, cx, ay, by, cy).
func (c CubicBezier) Coefficients() [6]float64 {
	return [6]float64{c.ax, c.bx, c.cx, c.ay, c.by, c.cy}
}

func (c CubicBezier) sampleX(t float64) float64 {
	return ((c.ax*t+c.bx)*t + c.cx) * t
}

func (c CubicBezier) sampleY(t float64) float64 {
	return ((c.ay*t+c.by)*t + c.cy) * t
}

// dx/dt
func (c CubicBezier) sampleDX(t float64) float64 {
	return (3*c.ax*t+2*c.bx)*t + c.cx
}

// solveX finds t such that x(t) == x. Newton's method first, bisection on
// [0,1] when it does not converge. Always returns a value.
func (c CubicBezier) solveX(x float64) float64 {
	t := x
	for range newtonSteps {
		dx := c.sampleX(t) - x
		if math.Abs(dx) < epsilon {
			return t
		}
		d := c.sampleDX(t)
		if math.Abs(d) < epsilon {
			break
		}
		t -= dx / d
	}

	lo, hi := 0.0, 1.0
	for range bisectionSteps {
		mid := (lo + hi) * 0.5
		v := c.sampleX(mid)
		if math.Abs(v-x) < epsilon {
			return mid
		}
		if v < x {
			lo = mid
		} else {
			hi = mid
		}
	}
	// interval did not close within tolerance, best effort
	return (lo + hi) * 0.5
}
