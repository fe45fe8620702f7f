package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Dense is a fully connected layer applied independently to every time step,
// so a (steps, features) input yields (steps, units).
type Dense struct {
	Units      int
	Activation Activation

	kernel *Param
	bias   *Param

	inputs Sequence
	preact Sequence
}

func NewDense(units int, act Activation) *Dense {
	return &Dense{Units: units, Activation: act}
}

func (d *Dense) Kind() string { return "Dense" }

func (d *Dense) Describe() string {
	return fmt.Sprintf("units=%d activation=%s", d.Units, d.Activation)
}

func (d *Dense) Build(in Shape, rng *rand.Rand) (Shape, error) {
	if d.Units <= 0 {
		return Shape{}, fmt.Errorf("%w: dense units %d", ErrInvalidLayer, d.Units)
	}
	if in.Features <= 0 || in.Steps <= 0 {
		return Shape{}, fmt.Errorf("%w: dense input %s", ErrShapeMismatch, in)
	}
	d.kernel = newParam("kernel", GlorotUniform(rng, in.Features, d.Units, in.Features, d.Units))
	d.bias = newParam("bias", mat.NewDense(1, d.Units, nil))
	return Shape{Steps: in.Steps, Features: d.Units, Flat: in.Flat}, nil
}

func (d *Dense) Forward(x Sequence, _ bool) Sequence {
	d.inputs = x
	d.preact = make(Sequence, len(x))
	out := make(Sequence, len(x))
	for t, xt := range x {
		var z mat.Dense
		z.Mul(xt, d.kernel.Value)
		addRowVector(&z, d.bias.Value)
		d.preact[t] = &z
		out[t] = d.Activation.apply(&z)
	}
	return out
}

func (d *Dense) Backward(grad Sequence) Sequence {
	dx := make(Sequence, len(grad))
	for t, g := range grad {
		dz := d.Activation.backward(d.preact[t], g)
		accumTMul(d.kernel.Grad, d.inputs[t], dz)
		accumColSum(d.bias.Grad, dz)
		dx[t] = mulT(dz, d.kernel.Value)
	}
	return dx
}

func (d *Dense) Params() []*Param { return []*Param{d.kernel, d.bias} }
