package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ForecastBench/internal/domain/models"
	"ForecastBench/internal/repository"
	"ForecastBench/pkg/logger"
)

func TestCompareWritesAllPairs(t *testing.T) {
	dir := t.TempDir()
	store := repository.NewCSVStore(dir)
	ctx := context.Background()
	_, err := store.WritePredictions(ctx, "predictions_X.csv", models.PredictionTable{
		Actual:  []float64{1, 2, 3, 4, 5, 6},
		Columns: models.Architectures,
		Predictions: map[models.Architecture][]float64{
			models.ANN:  {1.1, 2.2, 2.9, 4.3, 5.2, 5.8},
			models.CNN:  {0.7, 2.5, 3.4, 3.5, 5.9, 6.6},
			models.LSTM: {1.05, 1.9, 3.1, 4.05, 4.9, 6.1},
			models.GRU:  {1.4, 1.6, 3.3, 4.6, 5.4, 5.5},
		},
	})
	require.NoError(t, err)

	uc := NewComparisonUseCase(store, logger.Nop(), defaultReportConfig(), "dm_%s.csv", []int{3})
	cs, err := uc.Compare(ctx, "X")
	require.NoError(t, err)
	require.Len(t, cs, 6)
	assert.Equal(t, models.ANN, cs[0].A)
	assert.Equal(t, models.CNN, cs[0].B)
	assert.Equal(t, models.LSTM, cs[5].A)
	assert.Equal(t, models.GRU, cs[5].B)
	for _, c := range cs {
		assert.Equal(t, 6, c.N)
		assert.GreaterOrEqual(t, c.PValue, 0.0)
		assert.LessOrEqual(t, c.PValue, 1.0)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "dm_X.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Equal(t, "model_a,model_b,n,mean_diff,statistic,p_value", lines[0])
	assert.Len(t, lines, 7)
}

func TestCompareSkipsIdenticalForecasts(t *testing.T) {
	dir := t.TempDir()
	store := repository.NewCSVStore(dir)
	ctx := context.Background()
	_, err := store.WritePredictions(ctx, "predictions_X.csv", models.PredictionTable{
		Actual:  []float64{1, 2, 3, 4},
		Columns: []models.Architecture{models.ANN, models.CNN, models.GRU},
		Predictions: map[models.Architecture][]float64{
			models.ANN: {1.5, 2.5, 2.5, 4.5},
			models.CNN: {1.5, 2.5, 2.5, 4.5},
			models.GRU: {1, 2.1, 3.3, 3.6},
		},
	})
	require.NoError(t, err)

	uc := NewComparisonUseCase(store, logger.Nop(), defaultReportConfig(), "dm_%s.csv", []int{3})
	cs, err := uc.Compare(ctx, "X")
	require.NoError(t, err)
	require.Len(t, cs, 2)
	for _, c := range cs {
		assert.Equal(t, models.GRU, c.B)
	}
}

func TestCompareMissingPredictions(t *testing.T) {
	uc := NewComparisonUseCase(repository.NewCSVStore(t.TempDir()), logger.Nop(), defaultReportConfig(), "dm_%s.csv", []int{3})
	_, err := uc.Compare(context.Background(), "NOPE")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
