package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time { return time.Date(2016, 12, d, 0, 0, 0, 0, time.UTC) }

func TestSeriesSplit(t *testing.T) {
	s := Series{Symbol: "X"}
	for d := 1; d <= 10; d++ {
		s.Points = append(s.Points, Point{Date: day(d), Close: float64(d)})
	}

	train, test := s.Split(day(6))
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, train.Closes())
	assert.Equal(t, []float64{7, 8, 9, 10}, test.Closes())
	assert.Equal(t, "X", test.Symbol)

	// appending to train must not clobber test
	train.Points = append(train.Points, Point{Close: -1})
	assert.Equal(t, 7.0, test.Points[0].Close)

	all, none := s.Split(day(31))
	assert.Equal(t, 10, all.Len())
	assert.Zero(t, none.Len())

	none, all = s.Split(day(1).AddDate(0, 0, -1))
	assert.Zero(t, none.Len())
	assert.Equal(t, 10, all.Len())
}

func TestWindowReportTableOrder(t *testing.T) {
	r := WindowReport{
		Actual: []float64{1, 2},
		Ensembles: map[Architecture][]float64{
			GRU: {4, 4},
			ANN: {1, 1},
			CNN: {2, 2},
		},
	}
	tbl := r.Table()
	assert.Equal(t, []Architecture{ANN, CNN, GRU}, tbl.Columns)
	assert.Equal(t, 2, tbl.Rows())
	assert.Equal(t, []float64{4, 4}, tbl.Predictions[GRU])
}
