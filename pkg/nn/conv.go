package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Conv1D is a valid-padding, stride-1 temporal convolution. The kernel is
// stored unrolled as (KernelSize*inFeatures)×Filters so each output step is a
// single matrix product over a gathered window.
type Conv1D struct {
	Filters    int
	KernelSize int
	Activation Activation

	inFeatures int
	inSteps    int
	kernel     *Param
	bias       *Param

	windows Sequence
	preact  Sequence
}

func NewConv1D(filters, kernelSize int, act Activation) *Conv1D {
	return &Conv1D{Filters: filters, KernelSize: kernelSize, Activation: act}
}

func (c *Conv1D) Kind() string { return "Conv1D" }

func (c *Conv1D) Describe() string {
	return fmt.Sprintf("filters=%d kernel=%d activation=%s", c.Filters, c.KernelSize, c.Activation)
}

func (c *Conv1D) Build(in Shape, rng *rand.Rand) (Shape, error) {
	if c.Filters <= 0 || c.KernelSize <= 0 {
		return Shape{}, fmt.Errorf("%w: conv1d filters=%d kernel=%d", ErrInvalidLayer, c.Filters, c.KernelSize)
	}
	if in.Flat {
		return Shape{}, fmt.Errorf("%w: conv1d needs a sequence input, got %s", ErrShapeMismatch, in)
	}
	outSteps := in.Steps - c.KernelSize + 1
	if outSteps < 1 {
		return Shape{}, fmt.Errorf("%w: conv1d kernel %d longer than %d steps", ErrShapeMismatch, c.KernelSize, in.Steps)
	}
	c.inFeatures = in.Features
	c.inSteps = in.Steps
	fanIn := c.KernelSize * in.Features
	fanOut := c.KernelSize * c.Filters
	c.kernel = newParam("kernel", GlorotUniform(rng, fanIn, c.Filters, fanIn, fanOut))
	c.bias = newParam("bias", mat.NewDense(1, c.Filters, nil))
	return Shape{Steps: outSteps, Features: c.Filters}, nil
}

func (c *Conv1D) Forward(x Sequence, _ bool) Sequence {
	b := x.BatchSize()
	outSteps := len(x) - c.KernelSize + 1
	c.windows = make(Sequence, outSteps)
	c.preact = make(Sequence, outSteps)
	out := make(Sequence, outSteps)
	for t := 0; t < outSteps; t++ {
		win := mat.NewDense(b, c.KernelSize*c.inFeatures, nil)
		for k := 0; k < c.KernelSize; k++ {
			cols(win, k*c.inFeatures, (k+1)*c.inFeatures).Copy(x[t+k])
		}
		var z mat.Dense
		z.Mul(win, c.kernel.Value)
		addRowVector(&z, c.bias.Value)
		c.windows[t] = win
		c.preact[t] = &z
		out[t] = c.Activation.apply(&z)
	}
	return out
}

func (c *Conv1D) Backward(grad Sequence) Sequence {
	b := grad.BatchSize()
	dx := make(Sequence, c.inSteps)
	for t := range dx {
		dx[t] = mat.NewDense(b, c.inFeatures, nil)
	}
	for t, g := range grad {
		dz := c.Activation.backward(c.preact[t], g)
		accumTMul(c.kernel.Grad, c.windows[t], dz)
		accumColSum(c.bias.Grad, dz)
		dwin := mulT(dz, c.kernel.Value)
		for k := 0; k < c.KernelSize; k++ {
			dx[t+k].Add(dx[t+k], cols(dwin, k*c.inFeatures, (k+1)*c.inFeatures))
		}
	}
	return dx
}

func (c *Conv1D) Params() []*Param { return []*Param{c.kernel, c.bias} }

// MaxPooling1D takes the maximum over non-overlapping windows of PoolSize
// steps. Trailing steps that do not fill a window are dropped.
type MaxPooling1D struct {
	PoolSize int

	inSteps int
	argmax  [][]int // per output step, flat index (row*features+col) -> winning offset
}

func NewMaxPooling1D(poolSize int) *MaxPooling1D {
	return &MaxPooling1D{PoolSize: poolSize}
}

func (p *MaxPooling1D) Kind() string { return "MaxPooling1D" }

func (p *MaxPooling1D) Describe() string { return fmt.Sprintf("pool=%d", p.PoolSize) }

func (p *MaxPooling1D) Build(in Shape, _ *rand.Rand) (Shape, error) {
	if p.PoolSize <= 0 {
		return Shape{}, fmt.Errorf("%w: pool size %d", ErrInvalidLayer, p.PoolSize)
	}
	if in.Flat {
		return Shape{}, fmt.Errorf("%w: pooling needs a sequence input, got %s", ErrShapeMismatch, in)
	}
	outSteps := in.Steps / p.PoolSize
	if outSteps < 1 {
		return Shape{}, fmt.Errorf("%w: pool %d over %d steps leaves nothing", ErrShapeMismatch, p.PoolSize, in.Steps)
	}
	p.inSteps = in.Steps
	return Shape{Steps: outSteps, Features: in.Features}, nil
}

func (p *MaxPooling1D) Forward(x Sequence, _ bool) Sequence {
	rows, features := x[0].Dims()
	outSteps := len(x) / p.PoolSize
	out := make(Sequence, outSteps)
	p.argmax = make([][]int, outSteps)
	for t := 0; t < outSteps; t++ {
		o := mat.NewDense(rows, features, nil)
		arg := make([]int, rows*features)
		base := t * p.PoolSize
		for i := 0; i < rows; i++ {
			for j := 0; j < features; j++ {
				best, bestK := x[base].At(i, j), 0
				for k := 1; k < p.PoolSize; k++ {
					if v := x[base+k].At(i, j); v > best {
						best, bestK = v, k
					}
				}
				o.Set(i, j, best)
				arg[i*features+j] = bestK
			}
		}
		out[t] = o
		p.argmax[t] = arg
	}
	return out
}

func (p *MaxPooling1D) Backward(grad Sequence) Sequence {
	rows, features := grad[0].Dims()
	dx := make(Sequence, p.inSteps)
	for t := range dx {
		dx[t] = mat.NewDense(rows, features, nil)
	}
	for t, g := range grad {
		base := t * p.PoolSize
		for i := 0; i < rows; i++ {
			for j := 0; j < features; j++ {
				k := p.argmax[t][i*features+j]
				dx[base+k].Set(i, j, dx[base+k].At(i, j)+g.At(i, j))
			}
		}
	}
	return dx
}

func (p *MaxPooling1D) Params() []*Param { return nil }
