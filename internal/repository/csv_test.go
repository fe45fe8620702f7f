package repository

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ForecastBench/internal/domain/models"
	"ForecastBench/pkg/logger"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadSeries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "INFY.csv", `Date,Open,High,Low,Close,Adj Close,Volume
2016-12-30,1010.5,1020,1000,1015.25,990.1,100
2016-12-28,1000,1005,995,1001.10,980,120
2017-01-02,1016,1030,1012,1028.4,1002,90
`)
	src := NewCSVSeriesSource(filepath.Join(dir, "%s.csv"), "close", logger.Nop())
	s, err := src.Load(context.Background(), "INFY")
	require.NoError(t, err)

	assert.Equal(t, "INFY", s.Symbol)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{1001.10, 1015.25, 1028.4}, s.Closes())
	assert.Equal(t, time.Date(2016, 12, 28, 0, 0, 0, 0, time.UTC), s.Points[0].Date)
	assert.Equal(t, time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC), s.Points[2].Date)
}

func TestLoadSeriesWarnsOnDuplicateDay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "DUP.csv", "Date,Close\n2017-01-02,1\n2017-01-03,2\n2017-01-03,3\n")
	var buf bytes.Buffer
	log, err := logger.New(&logger.Config{Level: "debug", Format: "json", Writer: &buf})
	require.NoError(t, err)

	s, err := NewCSVSeriesSource(filepath.Join(dir, "%s.csv"), "Close", log).Load(context.Background(), "DUP")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, s.Closes())
	assert.Contains(t, buf.String(), `"date":"2017-01-03"`)
}

func TestLoadSeriesErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "NOCLOSE.csv", "Date,Open\n2017-01-02,1\n")
	writeFile(t, dir, "BADDATE.csv", "Date,Close\nyesterday,1\n")
	writeFile(t, dir, "BADPRICE.csv", "Date,Close\n2017-01-02,null\n")
	writeFile(t, dir, "EMPTYCELL.csv", "Date,Close\n2017-01-02,\n")
	writeFile(t, dir, "RAGGED.csv", "Date,Close\n2017-01-02,1,2\n")
	src := NewCSVSeriesSource(filepath.Join(dir, "%s.csv"), "Close", logger.Nop())
	ctx := context.Background()

	_, err := src.Load(ctx, "MISSING")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = src.Load(ctx, "NOCLOSE")
	assert.ErrorIs(t, err, ErrMissingColumn)

	for _, sym := range []string{"BADDATE", "BADPRICE", "EMPTYCELL"} {
		_, err = src.Load(ctx, sym)
		assert.ErrorIs(t, err, ErrMalformedRow, sym)
	}

	_, err = src.Load(ctx, "RAGGED")
	assert.Error(t, err)
}

func TestLoadSeriesIgnoresDateColumnNamedClose(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "X.csv", "close,Close\n2017-01-02,5\n")
	src := NewCSVSeriesSource(filepath.Join(dir, "%s.csv"), "Close", logger.Nop())
	s, err := src.Load(context.Background(), "X")
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, s.Closes())
}

func TestPredictionsRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	store := NewCSVStore(dir)
	tbl := models.PredictionTable{
		Actual:  []float64{0.5, 1.25, -0.1},
		Columns: []models.Architecture{models.ANN, models.CNN, models.LSTM, models.GRU},
		Predictions: map[models.Architecture][]float64{
			models.ANN:  {0.1, 0.2, 0.30000000000000004},
			models.CNN:  {1, 2, 3},
			models.LSTM: {1e-9, 2, 3},
			models.GRU:  {0, 0, 0},
		},
	}
	path, err := store.WritePredictions(context.Background(), "predictions_INFY.csv", tbl)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "predictions_INFY.csv"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "actual,ann,cnn,lstm,gru\n"+
		"0.5,0.1,1,1e-09,0\n"+
		"1.25,0.2,2,2,0\n"+
		"-0.1,0.30000000000000004,3,3,0\n", string(raw))

	back, err := store.ReadPredictions(context.Background(), "predictions_INFY.csv")
	require.NoError(t, err)
	assert.Equal(t, tbl, back)
}

func TestWritePredictionsRejectsRaggedTable(t *testing.T) {
	store := NewCSVStore(t.TempDir())
	_, err := store.WritePredictions(context.Background(), "p.csv", models.PredictionTable{
		Actual:      []float64{1, 2},
		Columns:     []models.Architecture{models.ANN},
		Predictions: map[models.Architecture][]float64{models.ANN: {1}},
	})
	assert.Error(t, err)
}

func TestReadPredictionsRejectsForeignFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "p.csv", "date,ann\n2017-01-01,1\n")
	writeFile(t, dir, "q.csv", "actual,ann\n1,abc\n")
	store := NewCSVStore(dir)

	_, err := store.ReadPredictions(context.Background(), "p.csv")
	assert.ErrorIs(t, err, ErrMalformedRow)
	_, err = store.ReadPredictions(context.Background(), "q.csv")
	assert.ErrorIs(t, err, ErrMalformedRow)
}

func TestWriteAggregatesAndComparisons(t *testing.T) {
	store := NewCSVStore(t.TempDir())
	ctx := context.Background()

	path, err := store.WriteAggregates(ctx, "aggregates_X.csv", []models.Aggregate{
		{Architecture: models.ANN, Window: 3, Runs: 2, MinMSE: 0.001, MeanMSE: 0.002, StdMSE: 0.001, MeanR2: 0.9},
	})
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "architecture,window,runs,min_mse,mean_mse,std_mse,mean_r2\nann,3,2,0.001,0.002,0.001,0.9\n", string(raw))

	path, err = store.WriteComparisons(ctx, "dm_X.csv", []models.Comparison{
		{A: models.ANN, B: models.GRU, N: 10, MeanDiff: -0.5, Statistic: -2, PValue: 0.25},
	})
	require.NoError(t, err)
	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "model_a,model_b,n,mean_diff,statistic,p_value\nann,gru,10,-0.5,-2,0.25\n", string(raw))
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCSVStore(t.TempDir()).WriteAggregates(ctx, "a.csv", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
