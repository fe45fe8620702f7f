package repository

import (
	"context"

	"ForecastBench/internal/domain/models"
)

// SeriesSource loads a symbol's closing-price history.
type SeriesSource interface {
	Load(ctx context.Context, symbol string) (models.Series, error)
}

// PredictionStore persists experiment outputs. Names are file names relative
// to the store's directory; writers return the path they wrote.
type PredictionStore interface {
	WritePredictions(ctx context.Context, name string, t models.PredictionTable) (string, error)
	ReadPredictions(ctx context.Context, name string) (models.PredictionTable, error)
	WriteAggregates(ctx context.Context, name string, aggs []models.Aggregate) (string, error)
	WriteComparisons(ctx context.Context, name string, cs []models.Comparison) (string, error)
}

type Metrics interface {
	RecordFit(arch string, window, epochs int, seconds float64)
	RecordTestError(symbol, arch string, window int, mse float64)
	RecordError(kind string)
}
