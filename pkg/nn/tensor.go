package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Shape describes one example: Steps time steps of Features values each.
// Flat marks tensors whose time axis has been collapsed (Flatten, or a
// recurrent layer returning only its last state); they always have Steps == 1.
type Shape struct {
	Steps    int
	Features int
	Flat     bool
}

// String renders the shape the way layer summaries usually show it,
// with the batch axis as None.
func (s Shape) String() string {
	if s.Flat {
		return fmt.Sprintf("(None, %d)", s.Features)
	}
	return fmt.Sprintf("(None, %d, %d)", s.Steps, s.Features)
}

// Sequence is a batch of sequences: one batch×features matrix per time step.
type Sequence []*mat.Dense

// BatchSize returns the number of rows in the batch.
func (s Sequence) BatchSize() int {
	if len(s) == 0 {
		return 0
	}
	r, _ := s[0].Dims()
	return r
}

// NewBatch lays out rows (each Steps*Features long, time-major) as a Sequence.
func NewBatch(rows [][]float64, shape Shape) (Sequence, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}
	width := shape.Steps * shape.Features
	seq := make(Sequence, shape.Steps)
	for t := range seq {
		seq[t] = mat.NewDense(len(rows), shape.Features, nil)
	}
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrShapeMismatch, i, len(row), width)
		}
		for t := 0; t < shape.Steps; t++ {
			copy(seq[t].RawRowView(i), row[t*shape.Features:(t+1)*shape.Features])
		}
	}
	return seq, nil
}

func cols(m *mat.Dense, from, to int) *mat.Dense {
	r, _ := m.Dims()
	return m.Slice(0, r, from, to).(*mat.Dense)
}

// addRowVector adds the 1×n vector v to every row of m.
func addRowVector(m, v *mat.Dense) {
	r, _ := m.Dims()
	bias := v.RawRowView(0)
	for i := 0; i < r; i++ {
		floats.Add(m.RawRowView(i), bias)
	}
}

// accumColSum adds the column sums of m into the 1×n vector dst.
func accumColSum(dst, m *mat.Dense) {
	r, _ := m.Dims()
	out := dst.RawRowView(0)
	for i := 0; i < r; i++ {
		floats.Add(out, m.RawRowView(i))
	}
}

// accumTMul adds aᵀ·b into dst.
func accumTMul(dst, a, b *mat.Dense) {
	var tmp mat.Dense
	tmp.Mul(a.T(), b)
	dst.Add(dst, &tmp)
}

// mulT returns a·wᵀ.
func mulT(a, w *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Mul(a, w.T())
	return &out
}

func hadamard(a, b *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.MulElem(a, b)
	return &out
}

func zerosLike(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	return mat.NewDense(r, c, nil)
}

func cloneDense(m *mat.Dense) *mat.Dense {
	return mat.DenseCopyOf(m)
}
