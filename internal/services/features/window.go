package features

import (
	"errors"
	"fmt"
)

var ErrInvalidWindow = errors.New("window size must be positive")

// Window slides a w-long window over series with step 1. Example i has input
// series[i:i+w] and target series[i+w], so there are len(series)-w examples
// and the last w points never start one. A window at least as long as the
// series yields no examples and no error; callers decide whether that is
// fatal.
func Window(series []float64, w int) ([][]float64, []float64, error) {
	if w <= 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidWindow, w)
	}
	n := len(series) - w
	if n <= 0 {
		return [][]float64{}, []float64{}, nil
	}
	inputs := make([][]float64, n)
	targets := make([]float64, n)
	for i := 0; i < n; i++ {
		in := make([]float64, w)
		copy(in, series[i:i+w])
		inputs[i] = in
		targets[i] = series[i+w]
	}
	return inputs, targets, nil
}

// WindowAfter windows series preceded by the last w values of history, so
// every value of series becomes a target. It is how held-out windows are
// built: the first test target is predicted from the final training values.
func WindowAfter(history, series []float64, w int) ([][]float64, []float64, error) {
	if w <= 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidWindow, w)
	}
	start := max(len(history)-w, 0)
	joined := make([]float64, 0, len(history)-start+len(series))
	joined = append(joined, history[start:]...)
	joined = append(joined, series...)
	return Window(joined, w)
}
