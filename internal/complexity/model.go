package complexity

import "math"

const minShape = -10.0

// convergence is the saturating curve
//
//	f(x) = 2(a-1)(sigmoid((x-c) / (d*e^b)) - 0.5) + 1
//
// which equals 1 at x = c and approaches a as x grows. c and d are fixed
// per series; a and b are fitted.
type convergence struct {
	c, d     float64
	maxShape float64
}

func (m convergence) shape(b float64) float64 {
	return math.Max(minShape, math.Min(m.maxShape, b))
}

func (m convergence) eval(x float64, params []float64) float64 {
	a, b := params[0], m.shape(params[1])
	z := (x - m.c) / (m.d * math.Exp(b))
	return 2*(a-1)*(sigmoid(z)-0.5) + 1
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
