//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"ForecastBench/internal/domain/repository"
	"ForecastBench/internal/usecase"
	"ForecastBench/pkg/config"
	"ForecastBench/pkg/metrics"
	"ForecastBench/pkg/runner"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*runner.App, error) {
	wire.Build(
		// Ambient
		ProvideRunID,
		ProvideLogger,
		ProvideMetrics,
		wire.Bind(new(repository.Metrics), new(*metrics.Recorder)),

		// Repositories
		ProvideSeriesSource,
		ProvidePredictionStore,

		// Models
		ProvideFactories,
		ProvideModelFactories,
		ProvideModelBuilders,
		ProvideRenderer,

		// Use cases
		ProvideExperimentConfig,
		ProvideReportConfig,
		usecase.NewExperimentRunner,
		usecase.NewReporter,
		ProvidePipeline,
		ProvideDiagramUseCase,
		ProvideComparisonUseCase,

		// Application
		ProvideApp,
	)
	return &runner.App{}, nil
}
