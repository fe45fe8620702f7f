package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrZeroVariance     = errors.New("loss differential has zero variance")
	ErrNegativeVariance = errors.New("loss differential has negative long-run variance")
)

// DMResult is the outcome of a Diebold-Mariano test.
type DMResult struct {
	N         int
	MeanDiff  float64 // mean of e1² - e2²
	Statistic float64 // HLN-corrected
	PValue    float64 // two-sided, Student t with N-1 degrees of freedom
}

// DieboldMariano tests equal predictive accuracy of two forecasts of actual
// under squared-error loss, with the Harvey-Leybourne-Newbold small-sample
// correction. h is the forecast horizon; autocovariances up to lag h-1 enter
// the long-run variance. When negative autocovariances drive that estimate
// below zero the test is undefined and ErrNegativeVariance is returned; no
// fallback to the lag-0 variance is made.
func DieboldMariano(actual, pred1, pred2 []float64, h int) (DMResult, error) {
	n := len(actual)
	if len(pred1) != n || len(pred2) != n {
		return DMResult{}, fmt.Errorf("%w: actual %d, forecasts %d and %d", ErrLengthMismatch, n, len(pred1), len(pred2))
	}
	if h < 1 {
		return DMResult{}, fmt.Errorf("horizon must be at least 1, got %d", h)
	}
	if n < 2 || n <= h {
		return DMResult{}, fmt.Errorf("need more than %d observations, got %d", max(h, 1), n)
	}

	d := make([]float64, n)
	for i := range d {
		e1 := actual[i] - pred1[i]
		e2 := actual[i] - pred2[i]
		d[i] = e1*e1 - e2*e2
	}
	mean := stat.Mean(d, nil)

	T := float64(n)
	autocov := func(k int) float64 {
		var s float64
		for i := k; i < n; i++ {
			s += (d[i] - mean) * (d[i-k] - mean)
		}
		return s / T
	}
	v := autocov(0)
	for k := 1; k < h; k++ {
		v += 2 * autocov(k)
	}
	v /= T
	switch {
	case v < 0:
		return DMResult{N: n, MeanDiff: mean}, fmt.Errorf("%w: %g at horizon %d", ErrNegativeVariance, v, h)
	case v == 0 || math.IsNaN(v):
		return DMResult{N: n, MeanDiff: mean}, ErrZeroVariance
	}

	dm := mean / math.Sqrt(v)
	hf := float64(h)
	dm *= math.Sqrt((T + 1 - 2*hf + hf*(hf-1)/T) / T)

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: T - 1}
	p := 2 * (1 - t.CDF(math.Abs(dm)))

	return DMResult{N: n, MeanDiff: mean, Statistic: dm, PValue: p}, nil
}
