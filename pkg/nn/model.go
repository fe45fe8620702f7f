package nn

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Sequential is a linear stack of layers mapping a (steps, features) window
// to a single regression output.
//
// Layers are built as they are added; the first failure is kept and reported
// by Compile, so factories can add layers without checking every call.
type Sequential struct {
	name   string
	input  Shape
	output Shape
	rng    *rand.Rand

	layers    []Layer
	summaries []LayerSummary
	kinds     map[string]int

	loss      Loss
	optimizer Optimizer
	err       error
}

func NewSequential(name string, input Shape, rng *rand.Rand) *Sequential {
	return &Sequential{
		name:   name,
		input:  input,
		output: input,
		rng:    rng,
		kinds:  make(map[string]int),
	}
}

func (m *Sequential) Name() string { return m.name }

func (m *Sequential) InputShape() Shape { return m.input }

// Add builds l against the current output shape and appends it.
func (m *Sequential) Add(l Layer) *Sequential {
	if m.err != nil {
		return m
	}
	out, err := l.Build(m.output, m.rng)
	if err != nil {
		m.err = fmt.Errorf("%s: add %s: %w", m.name, l.Kind(), err)
		return m
	}
	kind := l.Kind()
	m.kinds[kind]++
	summary := LayerSummary{
		Name:   fmt.Sprintf("%s_%d", strings.ToLower(kind), m.kinds[kind]),
		Kind:   kind,
		Input:  m.output,
		Output: out,
		Params: countParams(l.Params()),
	}
	if d, ok := l.(Describer); ok {
		summary.Config = d.Describe()
	}
	m.layers = append(m.layers, l)
	m.summaries = append(m.summaries, summary)
	m.output = out
	return m
}

// Compile attaches the loss and optimizer. It reports any error from Add and
// requires the stack to end in a single output value.
func (m *Sequential) Compile(loss Loss, opt Optimizer) error {
	if m.err != nil {
		return m.err
	}
	if len(m.layers) == 0 {
		return fmt.Errorf("%s: %w: no layers", m.name, ErrInvalidLayer)
	}
	if m.output.Steps != 1 || m.output.Features != 1 {
		return fmt.Errorf("%s: %w: output %s, want a single value", m.name, ErrShapeMismatch, m.output)
	}
	m.loss = loss
	m.optimizer = opt
	return nil
}

// Summary returns one entry per layer in order.
func (m *Sequential) Summary() []LayerSummary {
	return append([]LayerSummary(nil), m.summaries...)
}

// CountParams returns the number of trainable weights.
func (m *Sequential) CountParams() int {
	n := 0
	for _, s := range m.summaries {
		n += s.Params
	}
	return n
}

func (m *Sequential) params() []*Param {
	var ps []*Param
	for _, l := range m.layers {
		ps = append(ps, l.Params()...)
	}
	return ps
}

func (m *Sequential) forward(x Sequence, training bool) Sequence {
	for _, l := range m.layers {
		x = l.Forward(x, training)
	}
	return x
}

func (m *Sequential) backward(grad Sequence) {
	for i := len(m.layers) - 1; i >= 0; i-- {
		grad = m.layers[i].Backward(grad)
	}
}

// FitConfig controls a call to Fit.
type FitConfig struct {
	Epochs    int
	BatchSize int
	Shuffle   bool
	Callbacks []Callback
}

// History records the per-epoch training loss.
type History struct {
	Loss    []float64
	Stopped bool // a callback ended training before Epochs
}

// Epochs returns the number of epochs that ran.
func (h History) Epochs() int { return len(h.Loss) }

// Fit trains on x (rows of steps*features values) against y.
func (m *Sequential) Fit(ctx context.Context, x [][]float64, y []float64, cfg FitConfig) (History, error) {
	var hist History
	if m.loss == nil || m.optimizer == nil {
		return hist, ErrNotCompiled
	}
	if len(x) == 0 {
		return hist, ErrEmptyInput
	}
	if len(x) != len(y) {
		return hist, fmt.Errorf("%w: %d inputs, %d targets", ErrShapeMismatch, len(x), len(y))
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}

	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}
	params := m.params()

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return hist, err
		}
		if cfg.Shuffle {
			m.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		var total float64
		for start := 0; start < len(order); start += cfg.BatchSize {
			end := min(start+cfg.BatchSize, len(order))
			rows := make([][]float64, 0, end-start)
			targets := make([]float64, 0, end-start)
			for _, idx := range order[start:end] {
				rows = append(rows, x[idx])
				targets = append(targets, y[idx])
			}
			batch, err := NewBatch(rows, m.input)
			if err != nil {
				return hist, err
			}

			out := m.forward(batch, true)
			loss, grad := m.loss.Compute(out[0], targets)
			total += loss * float64(end-start)

			for _, p := range params {
				p.ZeroGrad()
			}
			m.backward(Sequence{grad})
			m.optimizer.Step(params)
		}

		epochLoss := total / float64(len(order))
		if math.IsNaN(epochLoss) || math.IsInf(epochLoss, 0) {
			return hist, fmt.Errorf("%s: epoch %d: %w", m.name, epoch+1, ErrNonFiniteLoss)
		}
		hist.Loss = append(hist.Loss, epochLoss)

		stop := false
		for _, cb := range cfg.Callbacks {
			if cb.OnEpochEnd(epoch+1, epochLoss) {
				stop = true
			}
		}
		if stop {
			hist.Stopped = true
			break
		}
	}
	return hist, nil
}

// Predict runs inference in batches of 32 and returns one value per row.
func (m *Sequential) Predict(x [][]float64) ([]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	const batchSize = 32
	out := make([]float64, 0, len(x))
	for start := 0; start < len(x); start += batchSize {
		end := min(start+batchSize, len(x))
		batch, err := NewBatch(x[start:end], m.input)
		if err != nil {
			return nil, err
		}
		pred := m.forward(batch, false)[0]
		for i := 0; i < end-start; i++ {
			out = append(out, pred.At(i, 0))
		}
	}
	return out, nil
}

// Evaluate returns the mean squared error of the model's predictions on x.
func (m *Sequential) Evaluate(x [][]float64, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: %d inputs, %d targets", ErrShapeMismatch, len(x), len(y))
	}
	pred, err := m.Predict(x)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i, p := range pred {
		d := p - y[i]
		sum += d * d
	}
	return sum / float64(len(pred)), nil
}
