package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// MSE is the mean squared difference between pred and actual.
func MSE(pred, actual []float64) (float64, error) {
	if len(pred) != len(actual) {
		return 0, fmt.Errorf("%w: %d predictions, %d actuals", ErrLengthMismatch, len(pred), len(actual))
	}
	if len(pred) == 0 {
		return 0, ErrNoRuns
	}
	var sum float64
	for i := range pred {
		d := pred[i] - actual[i]
		sum += d * d
	}
	return sum / float64(len(pred)), nil
}

// RSquared returns the coefficient of determination of pred against actual and
// the value adjusted for k predictors. The adjusted value is NaN when
// n <= k+1.
func RSquared(pred, actual []float64, k int) (r2, adj float64, err error) {
	if len(pred) != len(actual) {
		return 0, 0, fmt.Errorf("%w: %d predictions, %d actuals", ErrLengthMismatch, len(pred), len(actual))
	}
	if len(pred) == 0 {
		return 0, 0, ErrNoRuns
	}
	r2 = stat.RSquaredFrom(pred, actual, nil)
	n := float64(len(pred))
	if n <= float64(k)+1 {
		return r2, math.NaN(), nil
	}
	return r2, 1 - (1-r2)*(n-1)/(n-float64(k)-1), nil
}
