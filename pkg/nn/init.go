package nn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Initializer fills a rows×cols weight matrix. fanIn and fanOut are the
// receptive-field-adjusted fan values of the owning layer.
type Initializer func(rng *rand.Rand, rows, cols, fanIn, fanOut int) *mat.Dense

func uniform(rng *rand.Rand, rows, cols int, limit float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * limit
	}
	return mat.NewDense(rows, cols, data)
}

// GlorotUniform samples U(-l, l) with l = sqrt(6 / (fanIn + fanOut)).
func GlorotUniform(rng *rand.Rand, rows, cols, fanIn, fanOut int) *mat.Dense {
	return uniform(rng, rows, cols, math.Sqrt(6/float64(fanIn+fanOut)))
}

// LecunUniform samples U(-l, l) with l = sqrt(3 / fanIn).
func LecunUniform(rng *rand.Rand, rows, cols, fanIn, _ int) *mat.Dense {
	return uniform(rng, rows, cols, math.Sqrt(3/float64(fanIn)))
}

// Orthogonal returns a matrix whose rows (or columns, whichever are fewer)
// are orthonormal, from the QR factorisation of a Gaussian matrix.
func Orthogonal(rng *rand.Rand, rows, cols, _, _ int) *mat.Dense {
	n, m := rows, cols
	transpose := n < m
	if transpose {
		n, m = m, n
	}
	// a is n×m with n >= m.
	data := make([]float64, n*m)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	a := mat.NewDense(n, m, data)

	var qr mat.QR
	qr.Factorize(a)
	var q, r mat.Dense
	qr.QTo(&q)
	qr.RTo(&r)

	out := mat.NewDense(n, m, nil)
	out.Copy(q.Slice(0, n, 0, m))
	// Sign correction makes the distribution uniform over orthogonal matrices.
	for j := 0; j < m; j++ {
		if r.At(j, j) < 0 {
			for i := 0; i < n; i++ {
				out.Set(i, j, -out.At(i, j))
			}
		}
	}
	if transpose {
		return mat.DenseCopyOf(out.T())
	}
	return out
}

// Zeros returns a zero matrix.
func Zeros(_ *rand.Rand, rows, cols, _, _ int) *mat.Dense {
	return mat.NewDense(rows, cols, nil)
}
