// Package utility implements weighted multi-criteria action ranking:
// response curves transform normalized inputs, considerations weight them,
// and the scorer chains them multiplicatively with a compensation factor.
package utility

import (
	"fmt"
	"math"
)

// CurveKind identifies a response curve shape. The zero value is Linear.
type CurveKind int

const (
	// Linear is f(x) = x.
	Linear CurveKind = iota
	// Quadratic is f(x) = x^2.
	Quadratic
	// Exponential is f(x) = e^x / e.
	Exponential
	// Logarithmic is f(x) = ln(x+1) / ln 2.
	Logarithmic
	// Sigmoid is f(x) = 1 / (1 + e^(-10(x-0.5))).
	Sigmoid
	// Custom delegates to an externally supplied pure function.
	Custom
)

// String returns the profile-file name of the CurveKind.
func (k CurveKind) String() string {
	switch k {
	case Linear:
		return "linear"
	case Quadratic:
		return "quadratic"
	case Exponential:
		return "exponential"
	case Logarithmic:
		return "logarithmic"
	case Sigmoid:
		return "sigmoid"
	case Custom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseCurveKind maps a profile-file name to a CurveKind.
// Postcondition: returns an error for unrecognized names.
func ParseCurveKind(s string) (CurveKind, error) {
	switch s {
	case "linear":
		return Linear, nil
	case "quadratic":
		return Quadratic, nil
	case "exponential":
		return Exponential, nil
	case "logarithmic":
		return Logarithmic, nil
	case "sigmoid":
		return Sigmoid, nil
	case "custom":
		return Custom, nil
	default:
		return Linear, fmt.Errorf("utility: unknown curve %q", s)
	}
}

// CurveFunc is an externally supplied pure response function over [0, 1].
type CurveFunc func(float64) float64

// ResponseCurve maps a normalized input to a score contribution.
//
// Fn is consulted only when Kind is Custom; a Custom curve with a nil Fn
// falls back to Linear.
type ResponseCurve struct {
	Kind CurveKind
	Fn   CurveFunc
}

// sigmoidSteepness controls how sharply the Sigmoid curve transitions
// around its 0.5 midpoint.
const sigmoidSteepness = 10.0

// Evaluate transforms input through the curve.
//
// Postcondition: input is clamped to [0, 1] before the transform (NaN clamps
// to 0) and the result is never NaN.
func (c ResponseCurve) Evaluate(input float64) float64 {
	x := input
	if math.IsNaN(x) {
		x = 0
	}
	x = math.Min(math.Max(x, 0), 1)

	switch c.Kind {
	case Quadratic:
		return x * x
	case Exponential:
		return math.Exp(x) / math.E
	case Logarithmic:
		return math.Log(x+1) / math.Ln2
	case Sigmoid:
		return 1 / (1 + math.Exp(-sigmoidSteepness*(x-0.5)))
	case Custom:
		if c.Fn == nil {
			return x
		}
		y := c.Fn(x)
		if math.IsNaN(y) {
			return 0
		}
		return y
	default:
		return x
	}
}
