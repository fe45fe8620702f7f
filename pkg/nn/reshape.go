package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Flatten concatenates all time steps into a single feature vector, step-major
// (index = step*features + feature).
type Flatten struct {
	in Shape
}

func NewFlatten() *Flatten { return &Flatten{} }

func (f *Flatten) Kind() string { return "Flatten" }

func (f *Flatten) Build(in Shape, _ *rand.Rand) (Shape, error) {
	if in.Steps <= 0 || in.Features <= 0 {
		return Shape{}, fmt.Errorf("%w: flatten input %s", ErrShapeMismatch, in)
	}
	f.in = in
	return Shape{Steps: 1, Features: in.Steps * in.Features, Flat: true}, nil
}

func (f *Flatten) Forward(x Sequence, _ bool) Sequence {
	b := x.BatchSize()
	out := mat.NewDense(b, len(x)*f.in.Features, nil)
	for t, xt := range x {
		cols(out, t*f.in.Features, (t+1)*f.in.Features).Copy(xt)
	}
	return Sequence{out}
}

func (f *Flatten) Backward(grad Sequence) Sequence {
	dx := make(Sequence, f.in.Steps)
	for t := range dx {
		dx[t] = cloneDense(cols(grad[0], t*f.in.Features, (t+1)*f.in.Features))
	}
	return dx
}

func (f *Flatten) Params() []*Param { return nil }

// Dropout zeroes a Rate fraction of activations during training and scales the
// survivors by 1/(1-Rate); at inference it is the identity.
type Dropout struct {
	Rate float64

	rng   *rand.Rand
	masks Sequence
}

func NewDropout(rate float64) *Dropout { return &Dropout{Rate: rate} }

func (d *Dropout) Kind() string { return "Dropout" }

func (d *Dropout) Describe() string { return fmt.Sprintf("rate=%.2f", d.Rate) }

func (d *Dropout) Build(in Shape, rng *rand.Rand) (Shape, error) {
	if d.Rate < 0 || d.Rate >= 1 {
		return Shape{}, fmt.Errorf("%w: dropout rate %v", ErrInvalidLayer, d.Rate)
	}
	d.rng = rng
	return in, nil
}

func (d *Dropout) Forward(x Sequence, training bool) Sequence {
	if !training || d.Rate == 0 {
		d.masks = nil
		return x
	}
	keep := 1 - d.Rate
	scale := 1 / keep
	d.masks = make(Sequence, len(x))
	out := make(Sequence, len(x))
	for t, xt := range x {
		mask := zerosLike(xt)
		mask.Apply(func(_, _ int, _ float64) float64 {
			if d.rng.Float64() < keep {
				return scale
			}
			return 0
		}, mask)
		d.masks[t] = mask
		out[t] = hadamard(xt, mask)
	}
	return out
}

func (d *Dropout) Backward(grad Sequence) Sequence {
	if d.masks == nil {
		return grad
	}
	dx := make(Sequence, len(grad))
	for t, g := range grad {
		dx[t] = hadamard(g, d.masks[t])
	}
	return dx
}

func (d *Dropout) Params() []*Param { return nil }
