package usecase

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"ForecastBench/internal/domain/models"
	"ForecastBench/internal/domain/service"
	"ForecastBench/pkg/nn"
)

// fakeRegressor predicts the last value of each window plus a fixed offset
// and "trains" by feeding a flat loss to the callbacks.
type fakeRegressor struct {
	offset float64
	cfg    nn.FitConfig
	x      [][]float64
}

func (f *fakeRegressor) Fit(ctx context.Context, x [][]float64, _ []float64, cfg nn.FitConfig) (nn.History, error) {
	f.cfg = cfg
	f.x = x
	var h nn.History
	for e := 1; e <= cfg.Epochs; e++ {
		if err := ctx.Err(); err != nil {
			return h, err
		}
		h.Loss = append(h.Loss, 1)
		stop := false
		for _, cb := range cfg.Callbacks {
			if cb.OnEpochEnd(e, 1) {
				stop = true
			}
		}
		if stop {
			h.Stopped = true
			break
		}
	}
	return h, nil
}

func (f *fakeRegressor) Predict(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = row[len(row)-1] + f.offset
	}
	return out, nil
}

func (f *fakeRegressor) Evaluate(x [][]float64, y []float64) (float64, error) {
	p, _ := f.Predict(x)
	var s float64
	for i := range p {
		d := p[i] - y[i]
		s += d * d
	}
	return s / float64(len(p)), nil
}

type fakeFactory struct {
	arch     models.Architecture
	patience int
	buildErr error
	fitErr   error
	built    []*fakeRegressor
}

func (f *fakeFactory) Architecture() models.Architecture { return f.arch }
func (f *fakeFactory) Patience() int                     { return f.patience }

func (f *fakeFactory) Build(_ int, rng *rand.Rand) (service.Regressor, error) {
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	r := &fakeRegressor{offset: rng.Float64() / 10}
	f.built = append(f.built, r)
	if f.fitErr != nil {
		return failingRegressor{r, f.fitErr}, nil
	}
	return r, nil
}

type failingRegressor struct {
	*fakeRegressor
	err error
}

func (f failingRegressor) Fit(context.Context, [][]float64, []float64, nn.FitConfig) (nn.History, error) {
	return nn.History{}, f.err
}

func fakeFactories() []*fakeFactory {
	return []*fakeFactory{
		{arch: models.ANN, patience: 2},
		{arch: models.CNN, patience: 5},
		{arch: models.LSTM, patience: 5},
		{arch: models.GRU, patience: 5},
	}
}

func asModelFactories(fs []*fakeFactory) []service.ModelFactory {
	out := make([]service.ModelFactory, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

type memorySource map[string]models.Series

func (m memorySource) Load(_ context.Context, symbol string) (models.Series, error) {
	s, ok := m[symbol]
	if !ok {
		return models.Series{}, errors.New("no such symbol")
	}
	return s, nil
}

func day(d int) time.Time { return time.Date(2016, 12, d, 0, 0, 0, 0, time.UTC) }

// oneToTen closes at 1..10 on Dec 1..10; a split at Dec 6 keeps 1..6 for training.
func oneToTen(symbol string) models.Series {
	s := models.Series{Symbol: symbol}
	for i := 1; i <= 10; i++ {
		s.Points = append(s.Points, models.Point{Date: day(i), Close: float64(i)})
	}
	return s
}
