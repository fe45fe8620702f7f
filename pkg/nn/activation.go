package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Activation is an elementwise nonlinearity.
type Activation int

const (
	Linear Activation = iota
	ReLU
	Tanh
	Sigmoid
)

func (a Activation) String() string {
	switch a {
	case ReLU:
		return "relu"
	case Tanh:
		return "tanh"
	case Sigmoid:
		return "sigmoid"
	default:
		return "linear"
	}
}

func (a Activation) value(z float64) float64 {
	switch a {
	case ReLU:
		if z > 0 {
			return z
		}
		return 0
	case Tanh:
		return math.Tanh(z)
	case Sigmoid:
		return 1 / (1 + math.Exp(-z))
	default:
		return z
	}
}

// derivative is taken with respect to the pre-activation z.
func (a Activation) derivative(z float64) float64 {
	switch a {
	case ReLU:
		if z > 0 {
			return 1
		}
		return 0
	case Tanh:
		t := math.Tanh(z)
		return 1 - t*t
	case Sigmoid:
		s := 1 / (1 + math.Exp(-z))
		return s * (1 - s)
	default:
		return 1
	}
}

// apply returns a(z) as a new matrix.
func (a Activation) apply(z *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return a.value(v) }, z)
	return &out
}

// backward returns grad ⊙ a'(z) as a new matrix.
func (a Activation) backward(z, grad *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Apply(func(i, j int, g float64) float64 { return g * a.derivative(z.At(i, j)) }, grad)
	return &out
}
