package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"ForecastBench/internal/domain/models"
)

var (
	ErrNoRuns         = errors.New("no runs to aggregate")
	ErrLengthMismatch = errors.New("prediction vectors differ in length")
)

// Summary returns min, mean and population standard deviation of xs.
func Summary(xs []float64) (lo, mean, std float64, err error) {
	if len(xs) == 0 {
		return 0, 0, 0, ErrNoRuns
	}
	return floats.Min(xs), stat.Mean(xs, nil), math.Sqrt(stat.PopVariance(xs, nil)), nil
}

// Aggregate summarises test MSE and R² over runs of one architecture at one
// window. Runs must not be empty.
func Aggregate(arch models.Architecture, window int, runs []models.RunResult) (models.Aggregate, error) {
	if len(runs) == 0 {
		return models.Aggregate{}, fmt.Errorf("%s w=%d: %w", arch, window, ErrNoRuns)
	}
	mses := make([]float64, len(runs))
	r2s := make([]float64, len(runs))
	for i, r := range runs {
		mses[i] = r.TestMSE
		r2s[i] = r.R2
	}
	lo, mean, std, err := Summary(mses)
	if err != nil {
		return models.Aggregate{}, err
	}
	return models.Aggregate{
		Architecture: arch,
		Window:       window,
		Runs:         len(runs),
		MinMSE:       lo,
		MeanMSE:      mean,
		StdMSE:       std,
		MeanR2:       stat.Mean(r2s, nil),
	}, nil
}

// EnsembleMean averages equal-length prediction vectors element by element.
func EnsembleMean(preds [][]float64) ([]float64, error) {
	if len(preds) == 0 {
		return nil, ErrNoRuns
	}
	n := len(preds[0])
	out := make([]float64, n)
	for i, p := range preds {
		if len(p) != n {
			return nil, fmt.Errorf("%w: run %d has %d, want %d", ErrLengthMismatch, i, len(p), n)
		}
		floats.Add(out, p)
	}
	floats.Scale(1/float64(len(preds)), out)
	return out, nil
}
