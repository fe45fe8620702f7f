package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// RecurrentOptions configures LSTM and GRU layers.
type RecurrentOptions struct {
	Activation          Activation // candidate and output activation
	RecurrentActivation Activation // gate activation
	ReturnSequences     bool
	KernelInit          Initializer
	RecurrentInit       Initializer
}

// DefaultRecurrentOptions mirrors the usual recurrent defaults: tanh
// candidates, sigmoid gates, glorot input kernel, orthogonal recurrent kernel.
func DefaultRecurrentOptions() RecurrentOptions {
	return RecurrentOptions{
		Activation:          Tanh,
		RecurrentActivation: Sigmoid,
		KernelInit:          GlorotUniform,
		RecurrentInit:       Orthogonal,
	}
}

func (o RecurrentOptions) describe(units int) string {
	return fmt.Sprintf("units=%d activation=%s return_sequences=%t", units, o.Activation, o.ReturnSequences)
}

func (o RecurrentOptions) outShape(in Shape, units int) Shape {
	if o.ReturnSequences {
		return Shape{Steps: in.Steps, Features: units}
	}
	return Shape{Steps: 1, Features: units, Flat: true}
}

func checkRecurrentInput(kind string, units int, in Shape) error {
	if units <= 0 {
		return fmt.Errorf("%w: %s units %d", ErrInvalidLayer, kind, units)
	}
	if in.Flat || in.Steps <= 0 || in.Features <= 0 {
		return fmt.Errorf("%w: %s needs a sequence input, got %s", ErrShapeMismatch, kind, in)
	}
	return nil
}

// gradAt returns the upstream gradient for step t, or nil when the layer only
// emits its final state and t is not the last step.
func gradAt(grad Sequence, t, steps int, returnSequences bool) *mat.Dense {
	if returnSequences {
		return grad[t]
	}
	if t == steps-1 {
		return grad[0]
	}
	return nil
}

// LSTM is a long short-term memory layer. Gate blocks in the fused kernels are
// ordered input, forget, candidate, output.
type LSTM struct {
	Units int
	Opts  RecurrentOptions

	kernel    *Param // in×4u
	recurrent *Param // u×4u
	bias      *Param // 1×4u

	steps []lstmStep
}

type lstmStep struct {
	x, hPrev, cPrev *mat.Dense
	i, f, o         *mat.Dense // gate outputs
	zi, zf, zo      *mat.Dense // gate pre-activations
	zg, g           *mat.Dense // candidate pre-activation and value
	c, hc           *mat.Dense // cell state and act(cell)
}

func NewLSTM(units int, opts RecurrentOptions) *LSTM {
	return &LSTM{Units: units, Opts: opts}
}

func (l *LSTM) Kind() string { return "LSTM" }

func (l *LSTM) Describe() string { return l.Opts.describe(l.Units) }

func (l *LSTM) Build(in Shape, rng *rand.Rand) (Shape, error) {
	if err := checkRecurrentInput("lstm", l.Units, in); err != nil {
		return Shape{}, err
	}
	u := l.Units
	l.kernel = newParam("kernel", l.Opts.KernelInit(rng, in.Features, 4*u, in.Features, 4*u))
	l.recurrent = newParam("recurrent_kernel", l.Opts.RecurrentInit(rng, u, 4*u, u, 4*u))
	bias := mat.NewDense(1, 4*u, nil)
	// unit forget bias
	for j := u; j < 2*u; j++ {
		bias.Set(0, j, 1)
	}
	l.bias = newParam("bias", bias)
	return l.Opts.outShape(in, u), nil
}

func (l *LSTM) Forward(x Sequence, _ bool) Sequence {
	b, u := x.BatchSize(), l.Units
	gate, act := l.Opts.RecurrentActivation, l.Opts.Activation
	h := mat.NewDense(b, u, nil)
	c := mat.NewDense(b, u, nil)
	l.steps = make([]lstmStep, len(x))
	var out Sequence
	if l.Opts.ReturnSequences {
		out = make(Sequence, len(x))
	}
	for t, xt := range x {
		var z, hu mat.Dense
		z.Mul(xt, l.kernel.Value)
		hu.Mul(h, l.recurrent.Value)
		z.Add(&z, &hu)
		addRowVector(&z, l.bias.Value)

		st := lstmStep{x: xt, hPrev: h, cPrev: c}
		st.zi = cloneDense(cols(&z, 0, u))
		st.zf = cloneDense(cols(&z, u, 2*u))
		st.zg = cloneDense(cols(&z, 2*u, 3*u))
		st.zo = cloneDense(cols(&z, 3*u, 4*u))
		st.i = gate.apply(st.zi)
		st.f = gate.apply(st.zf)
		st.g = act.apply(st.zg)
		st.o = gate.apply(st.zo)

		cNew := hadamard(st.f, c)
		cNew.Add(cNew, hadamard(st.i, st.g))
		st.c = cNew
		st.hc = act.apply(cNew)
		h = hadamard(st.o, st.hc)
		c = cNew

		l.steps[t] = st
		if l.Opts.ReturnSequences {
			out[t] = h
		}
	}
	if !l.Opts.ReturnSequences {
		return Sequence{h}
	}
	return out
}

func (l *LSTM) Backward(grad Sequence) Sequence {
	steps := len(l.steps)
	b, u := grad.BatchSize(), l.Units
	gate, act := l.Opts.RecurrentActivation, l.Opts.Activation
	dx := make(Sequence, steps)
	dhNext := mat.NewDense(b, u, nil)
	dcNext := mat.NewDense(b, u, nil)
	for t := steps - 1; t >= 0; t-- {
		st := l.steps[t]
		dh := cloneDense(dhNext)
		if g := gradAt(grad, t, steps, l.Opts.ReturnSequences); g != nil {
			dh.Add(dh, g)
		}

		// h = o ⊙ act(c)
		dc := act.backward(st.c, hadamard(dh, st.o))
		dc.Add(dc, dcNext)

		dz := mat.NewDense(b, 4*u, nil)
		cols(dz, 0, u).Copy(gate.backward(st.zi, hadamard(dc, st.g)))
		cols(dz, u, 2*u).Copy(gate.backward(st.zf, hadamard(dc, st.cPrev)))
		cols(dz, 2*u, 3*u).Copy(act.backward(st.zg, hadamard(dc, st.i)))
		cols(dz, 3*u, 4*u).Copy(gate.backward(st.zo, hadamard(dh, st.hc)))

		accumTMul(l.kernel.Grad, st.x, dz)
		accumTMul(l.recurrent.Grad, st.hPrev, dz)
		accumColSum(l.bias.Grad, dz)

		dx[t] = mulT(dz, l.kernel.Value)
		dhNext = mulT(dz, l.recurrent.Value)
		dcNext = hadamard(dc, st.f)
	}
	return dx
}

func (l *LSTM) Params() []*Param { return []*Param{l.kernel, l.recurrent, l.bias} }

// GRU is a gated recurrent unit layer with the reset gate applied to the
// previous state before the recurrent product. Gate blocks are ordered
// update, reset, candidate.
type GRU struct {
	Units int
	Opts  RecurrentOptions

	kernel    *Param // in×3u
	recurrent *Param // u×3u
	bias      *Param // 1×3u

	steps []gruStep
}

type gruStep struct {
	x, hPrev *mat.Dense
	az, ar   *mat.Dense // gate pre-activations
	z, r     *mat.Dense
	rh       *mat.Dense // r ⊙ hPrev
	ah, hh   *mat.Dense // candidate pre-activation and value
}

func NewGRU(units int, opts RecurrentOptions) *GRU {
	return &GRU{Units: units, Opts: opts}
}

func (g *GRU) Kind() string { return "GRU" }

func (g *GRU) Describe() string { return g.Opts.describe(g.Units) }

func (g *GRU) Build(in Shape, rng *rand.Rand) (Shape, error) {
	if err := checkRecurrentInput("gru", g.Units, in); err != nil {
		return Shape{}, err
	}
	u := g.Units
	g.kernel = newParam("kernel", g.Opts.KernelInit(rng, in.Features, 3*u, in.Features, 3*u))
	g.recurrent = newParam("recurrent_kernel", g.Opts.RecurrentInit(rng, u, 3*u, u, 3*u))
	g.bias = newParam("bias", mat.NewDense(1, 3*u, nil))
	return g.Opts.outShape(in, u), nil
}

func (g *GRU) Forward(x Sequence, _ bool) Sequence {
	b, u := x.BatchSize(), g.Units
	gate, act := g.Opts.RecurrentActivation, g.Opts.Activation
	uzr := cols(g.recurrent.Value, 0, 2*u)
	uh := cols(g.recurrent.Value, 2*u, 3*u)
	h := mat.NewDense(b, u, nil)
	g.steps = make([]gruStep, len(x))
	var out Sequence
	if g.Opts.ReturnSequences {
		out = make(Sequence, len(x))
	}
	for t, xt := range x {
		var xw, hu mat.Dense
		xw.Mul(xt, g.kernel.Value)
		addRowVector(&xw, g.bias.Value)
		hu.Mul(h, uzr)

		st := gruStep{x: xt, hPrev: h}
		st.az = cloneDense(cols(&xw, 0, u))
		st.az.Add(st.az, cols(&hu, 0, u))
		st.ar = cloneDense(cols(&xw, u, 2*u))
		st.ar.Add(st.ar, cols(&hu, u, 2*u))
		st.z = gate.apply(st.az)
		st.r = gate.apply(st.ar)
		st.rh = hadamard(st.r, h)

		var rhu mat.Dense
		rhu.Mul(st.rh, uh)
		st.ah = cloneDense(cols(&xw, 2*u, 3*u))
		st.ah.Add(st.ah, &rhu)
		st.hh = act.apply(st.ah)

		// h = z ⊙ hPrev + (1-z) ⊙ hh  ==  hh + z ⊙ (hPrev - hh)
		var diff mat.Dense
		diff.Sub(h, st.hh)
		hNew := hadamard(st.z, &diff)
		hNew.Add(hNew, st.hh)
		h = hNew

		g.steps[t] = st
		if g.Opts.ReturnSequences {
			out[t] = h
		}
	}
	if !g.Opts.ReturnSequences {
		return Sequence{h}
	}
	return out
}

func (g *GRU) Backward(grad Sequence) Sequence {
	steps := len(g.steps)
	b, u := grad.BatchSize(), g.Units
	gate, act := g.Opts.RecurrentActivation, g.Opts.Activation
	uzr := cols(g.recurrent.Value, 0, 2*u)
	uh := cols(g.recurrent.Value, 2*u, 3*u)
	gradUzr := cols(g.recurrent.Grad, 0, 2*u)
	gradUh := cols(g.recurrent.Grad, 2*u, 3*u)
	dx := make(Sequence, steps)
	dhNext := mat.NewDense(b, u, nil)
	for t := steps - 1; t >= 0; t-- {
		st := g.steps[t]
		dh := cloneDense(dhNext)
		if gt := gradAt(grad, t, steps, g.Opts.ReturnSequences); gt != nil {
			dh.Add(dh, gt)
		}

		var diff, oneMinusZ mat.Dense
		diff.Sub(st.hPrev, st.hh)
		oneMinusZ.Apply(func(_, _ int, v float64) float64 { return 1 - v }, st.z)

		daz := gate.backward(st.az, hadamard(dh, &diff))
		dah := act.backward(st.ah, hadamard(dh, &oneMinusZ))

		accumTMul(gradUh, st.rh, dah)
		drh := mulT(dah, uh)
		dar := gate.backward(st.ar, hadamard(drh, st.hPrev))

		dgates := mat.NewDense(b, 3*u, nil)
		cols(dgates, 0, u).Copy(daz)
		cols(dgates, u, 2*u).Copy(dar)
		cols(dgates, 2*u, 3*u).Copy(dah)
		dzr := cols(dgates, 0, 2*u)

		accumTMul(g.kernel.Grad, st.x, dgates)
		accumColSum(g.bias.Grad, dgates)
		accumTMul(gradUzr, st.hPrev, dzr)

		dhPrev := hadamard(dh, st.z)
		dhPrev.Add(dhPrev, hadamard(drh, st.r))
		dhPrev.Add(dhPrev, mulT(dzr, uzr))

		dx[t] = mulT(dgates, g.kernel.Value)
		dhNext = dhPrev
	}
	return dx
}

func (g *GRU) Params() []*Param { return []*Param{g.kernel, g.recurrent, g.bias} }
