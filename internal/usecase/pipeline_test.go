package usecase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ForecastBench/internal/repository"
	"ForecastBench/pkg/logger"
	"ForecastBench/pkg/metrics"
)

func newPipeline(dir string, src memorySource, symbols []string, continueOnError bool) *Pipeline {
	runner := newRunner(fakeFactories(), src, 3)
	reporter := NewReporter(repository.NewCSVStore(dir), logger.Nop(), defaultReportConfig())
	return NewPipeline(runner, reporter, metrics.New(), logger.Nop(), symbols, continueOnError)
}

func TestPipelineWritesOneFilePerSymbol(t *testing.T) {
	dir := t.TempDir()
	src := memorySource{"A": oneToTen("A"), "B": oneToTen("B")}
	require.NoError(t, newPipeline(dir, src, []string{"A", "B"}, false).Run(context.Background()))
	assert.FileExists(t, filepath.Join(dir, "predictions_A.csv"))
	assert.FileExists(t, filepath.Join(dir, "predictions_B.csv"))
}

func TestPipelineStopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	src := memorySource{"B": oneToTen("B")}
	err := newPipeline(dir, src, []string{"A", "B"}, false).Run(context.Background())
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "predictions_B.csv"))
}

func TestPipelineContinueOnError(t *testing.T) {
	dir := t.TempDir()
	src := memorySource{"B": oneToTen("B")}
	err := newPipeline(dir, src, []string{"A", "B", "C"}, true).Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "load A")
	assert.ErrorContains(t, err, "load C")
	assert.FileExists(t, filepath.Join(dir, "predictions_B.csv"))
}
