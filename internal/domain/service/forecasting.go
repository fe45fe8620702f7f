package service

import (
	"context"
	"math/rand"

	"ForecastBench/internal/domain/models"
	"ForecastBench/pkg/nn"
)

// Regressor is a trainable one-step-ahead forecaster over fixed windows.
type Regressor interface {
	Fit(ctx context.Context, x [][]float64, y []float64, cfg nn.FitConfig) (nn.History, error)
	Predict(x [][]float64) ([]float64, error)
	Evaluate(x [][]float64, y []float64) (float64, error)
}

// ModelFactory builds fresh, compiled regressors of one architecture.
type ModelFactory interface {
	Architecture() models.Architecture
	Patience() int
	Build(window int, rng *rand.Rand) (Regressor, error)
}
