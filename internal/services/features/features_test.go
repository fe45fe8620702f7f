package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowCounts(t *testing.T) {
	series := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}
	for w := 1; w < len(series); w++ {
		x, y, err := Window(series, w)
		require.NoError(t, err)
		require.Len(t, x, len(series)-w)
		require.Len(t, y, len(series)-w)
		for i := range x {
			assert.Len(t, x[i], w)
			assert.Equal(t, series[i:i+w], x[i])
			assert.Equal(t, series[i+w], y[i])
		}
	}
}

func TestWindowDegenerate(t *testing.T) {
	for _, w := range []int{3, 4, 10} {
		x, y, err := Window([]float64{1, 2, 3}, w)
		require.NoError(t, err)
		assert.Empty(t, x)
		assert.Empty(t, y)
	}

	_, _, err := Window([]float64{1, 2, 3}, 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)
	_, _, err = Window([]float64{1, 2, 3}, -2)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestWindowCopiesInput(t *testing.T) {
	series := []float64{1, 2, 3, 4}
	x, _, err := Window(series, 2)
	require.NoError(t, err)
	x[0][0] = 100
	assert.Equal(t, 1.0, series[0])
	assert.Equal(t, 2.0, x[1][0])
}

func TestScalerFitRange(t *testing.T) {
	train := []float64{12.5, 7, 30, 18.25, 7, 22}
	s := NewMinMaxScaler()
	out, err := s.FitTransform(train)
	require.NoError(t, err)

	for _, v := range out {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.Equal(t, 0.0, out[1])
	assert.Equal(t, 0.0, out[4])
	assert.Equal(t, 1.0, out[2])
}

func TestScalerIsNotRefit(t *testing.T) {
	s := NewMinMaxScaler()
	require.NoError(t, s.Fit([]float64{10, 20}))
	min0, scale0 := s.Coefficients()

	a, err := s.Transform([]float64{5, 15, 40})
	require.NoError(t, err)
	minA, scaleA := s.Coefficients()

	b, err := s.Transform([]float64{100, 0})
	require.NoError(t, err)
	minB, scaleB := s.Coefficients()

	assert.Equal(t, min0, minA)
	assert.Equal(t, min0, minB)
	assert.Equal(t, scale0, scaleA)
	assert.Equal(t, scale0, scaleB)

	// held-out extremes fall outside [0,1]
	assert.Equal(t, []float64{-0.5, 0.5, 3}, a)
	assert.Equal(t, []float64{9, -1}, b)
}

func TestScalerConstantSeries(t *testing.T) {
	s := NewMinMaxScaler()
	out, err := s.FitTransform([]float64{4, 4, 4})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, out)

	more, err := s.Transform([]float64{5})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, more)
}

func TestScalerErrors(t *testing.T) {
	s := NewMinMaxScaler()
	_, err := s.Transform([]float64{1})
	assert.ErrorIs(t, err, ErrScalerNotFitted)
	_, err = s.InverseTransform([]float64{1})
	assert.ErrorIs(t, err, ErrScalerNotFitted)
	assert.ErrorIs(t, s.Fit(nil), ErrEmptySeries)
	assert.False(t, s.Fitted())
}

func TestScalerInverse(t *testing.T) {
	s := NewMinMaxScaler()
	prices := []float64{101.5, 99.25, 110, 104}
	scaled, err := s.FitTransform(prices)
	require.NoError(t, err)
	back, err := s.InverseTransform(scaled)
	require.NoError(t, err)
	assert.InDeltaSlice(t, prices, back, 1e-12)
}

// Prices 1..10 split after the sixth value with window 3.
func TestTrainTestWindows(t *testing.T) {
	train := []float64{1, 2, 3, 4, 5, 6}
	test := []float64{7, 8, 9, 10}

	x, y, err := Window(train, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2, 3}, {2, 3, 4}, {3, 4, 5}}, x)
	assert.Equal(t, []float64{4, 5, 6}, y)

	// test windows start from the last w training points
	x, y, err = WindowAfter(train, test, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{4, 5, 6}, {5, 6, 7}, {6, 7, 8}, {7, 8, 9}}, x)
	assert.Equal(t, []float64{7, 8, 9, 10}, y)
}

func TestWindowAfterShortHistory(t *testing.T) {
	x, y, err := WindowAfter([]float64{1}, []float64{2, 3, 4}, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {2, 3}}, x)
	assert.Equal(t, []float64{3, 4}, y)

	x, y, err = WindowAfter(nil, nil, 2)
	require.NoError(t, err)
	assert.Empty(t, x)
	assert.Empty(t, y)

	_, _, err = WindowAfter([]float64{1}, []float64{2}, 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
