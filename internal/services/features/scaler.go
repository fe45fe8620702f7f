package features

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrScalerNotFitted = errors.New("scaler used before fit")
	ErrEmptySeries     = errors.New("empty series")
)

// MinMaxScaler maps values into [0,1] using the min and max of the data it
// was fitted on. Later Transform calls reuse that map unchanged, so values
// outside the fitted range land outside [0,1].
type MinMaxScaler struct {
	min    float64
	scale  float64 // max - min, or 1 for a constant series
	fitted bool
}

func NewMinMaxScaler() *MinMaxScaler { return &MinMaxScaler{} }

// Fit records the min and range of xs.
func (s *MinMaxScaler) Fit(xs []float64) error {
	if len(xs) == 0 {
		return ErrEmptySeries
	}
	lo, hi := floats.Min(xs), floats.Max(xs)
	s.min = lo
	s.scale = hi - lo
	if s.scale == 0 {
		s.scale = 1
	}
	s.fitted = true
	return nil
}

// Transform returns (x-min)/(max-min) for every x.
func (s *MinMaxScaler) Transform(xs []float64) ([]float64, error) {
	if !s.fitted {
		return nil, ErrScalerNotFitted
	}
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = (x - s.min) / s.scale
	}
	return out, nil
}

func (s *MinMaxScaler) FitTransform(xs []float64) ([]float64, error) {
	if err := s.Fit(xs); err != nil {
		return nil, err
	}
	return s.Transform(xs)
}

// InverseTransform maps scaled values back to prices.
func (s *MinMaxScaler) InverseTransform(xs []float64) ([]float64, error) {
	if !s.fitted {
		return nil, ErrScalerNotFitted
	}
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x*s.scale + s.min
	}
	return out, nil
}

// Coefficients returns the fitted offset and divisor.
func (s *MinMaxScaler) Coefficients() (min, scale float64) {
	return s.min, s.scale
}

func (s *MinMaxScaler) Fitted() bool { return s.fitted }
