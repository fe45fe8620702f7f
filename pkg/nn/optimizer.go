package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Optimizer updates parameters from their accumulated gradients.
type Optimizer interface {
	Step(params []*Param)
	Name() string
}

// Adam implements the Adam update with bias-corrected step size.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	t     int
	state map[*Param]*adamState
}

type adamState struct {
	m, v *mat.Dense
}

// NewAdam returns Adam with the customary defaults (β1 0.9, β2 0.999, ε 1e-7).
func NewAdam(lr float64) *Adam {
	return &Adam{
		LearningRate: lr,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-7,
		state:        make(map[*Param]*adamState),
	}
}

func (a *Adam) Name() string { return "adam" }

func (a *Adam) Step(params []*Param) {
	a.t++
	lr := a.LearningRate * math.Sqrt(1-math.Pow(a.Beta2, float64(a.t))) / (1 - math.Pow(a.Beta1, float64(a.t)))
	for _, p := range params {
		st, ok := a.state[p]
		if !ok {
			st = &adamState{m: zerosLike(p.Value), v: zerosLike(p.Value)}
			a.state[p] = st
		}
		r, c := p.Value.Dims()
		for i := 0; i < r; i++ {
			g := p.Grad.RawRowView(i)
			m := st.m.RawRowView(i)
			v := st.v.RawRowView(i)
			w := p.Value.RawRowView(i)
			for j := 0; j < c; j++ {
				m[j] = a.Beta1*m[j] + (1-a.Beta1)*g[j]
				v[j] = a.Beta2*v[j] + (1-a.Beta2)*g[j]*g[j]
				w[j] -= lr * m[j] / (math.Sqrt(v[j]) + a.Epsilon)
			}
		}
	}
}

// SGD is plain gradient descent; used mostly to sanity-check gradients.
type SGD struct {
	LearningRate float64
}

func NewSGD(lr float64) *SGD { return &SGD{LearningRate: lr} }

func (s *SGD) Name() string { return "sgd" }

func (s *SGD) Step(params []*Param) {
	for _, p := range params {
		var step mat.Dense
		step.Scale(s.LearningRate, p.Grad)
		p.Value.Sub(p.Value, &step)
	}
}

// Loss computes a scalar loss over a batch of single-output predictions and
// its gradient with respect to the predictions.
type Loss interface {
	Compute(pred *mat.Dense, target []float64) (float64, *mat.Dense)
	Name() string
}

// MeanSquaredError is mean((pred-target)²) over the batch.
type MeanSquaredError struct{}

func (MeanSquaredError) Name() string { return "mean_squared_error" }

func (MeanSquaredError) Compute(pred *mat.Dense, target []float64) (float64, *mat.Dense) {
	n, _ := pred.Dims()
	grad := mat.NewDense(n, 1, nil)
	var sum float64
	for i := 0; i < n; i++ {
		d := pred.At(i, 0) - target[i]
		sum += d * d
		grad.Set(i, 0, 2*d/float64(n))
	}
	return sum / float64(n), grad
}
