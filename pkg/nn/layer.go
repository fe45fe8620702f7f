package nn

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Param is a trainable weight matrix together with its accumulated gradient.
type Param struct {
	Name  string
	Value *mat.Dense
	Grad  *mat.Dense
}

func newParam(name string, value *mat.Dense) *Param {
	return &Param{Name: name, Value: value, Grad: zerosLike(value)}
}

// Size returns the number of scalar weights.
func (p *Param) Size() int {
	r, c := p.Value.Dims()
	return r * c
}

// ZeroGrad clears the accumulated gradient.
func (p *Param) ZeroGrad() {
	p.Grad.Zero()
}

// Layer is one stage of a Sequential model.
//
// Build is called once with the shape produced by the previous layer and
// returns the layer's own output shape. Forward caches whatever Backward needs;
// Backward receives dL/d(output), accumulates parameter gradients and returns
// dL/d(input).
type Layer interface {
	Kind() string
	Build(in Shape, rng *rand.Rand) (Shape, error)
	Forward(x Sequence, training bool) Sequence
	Backward(grad Sequence) Sequence
	Params() []*Param
}

// Describer is implemented by layers that can summarise their configuration.
type Describer interface {
	Describe() string
}

// LayerSummary is one row of a model summary.
type LayerSummary struct {
	Name   string
	Kind   string
	Input  Shape
	Output Shape
	Params int
	Config string
}

func countParams(ps []*Param) int {
	n := 0
	for _, p := range ps {
		n += p.Size()
	}
	return n
}
