package di

import (
	"fmt"

	"ForecastBench/internal/domain/models"
	"ForecastBench/internal/domain/repository"
	"ForecastBench/internal/domain/service"
	internalrepo "ForecastBench/internal/repository"
	"ForecastBench/internal/services/architectures"
	"ForecastBench/internal/services/diagram"
	"ForecastBench/internal/usecase"
	"ForecastBench/pkg/config"
	applogger "ForecastBench/pkg/logger"
	"ForecastBench/pkg/metrics"
	"ForecastBench/pkg/runner"
)

// ProvideRunID creates the identifier stamped on every log line.
func ProvideRunID() runner.RunID {
	return runner.NewRunID()
}

// ProvideLogger creates the application logger from cfg.Logger.
func ProvideLogger(cfg *config.Config, id runner.RunID) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With("run_id", string(id)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideSeriesSource creates the CSV price loader.
func ProvideSeriesSource(cfg *config.Config, log *applogger.Logger) repository.SeriesSource {
	return internalrepo.NewCSVSeriesSource(cfg.Data.PathPattern, cfg.Data.CloseColumn, log)
}

// ProvidePredictionStore creates the CSV output store rooted at report.dir.
func ProvidePredictionStore(cfg *config.Config) repository.PredictionStore {
	return internalrepo.NewCSVStore(cfg.Report.Dir)
}

// ProvideFactories creates one model factory per architecture, in report order.
func ProvideFactories(cfg *config.Config) ([]*architectures.Factory, error) {
	p := cfg.Experiment.Patience
	patience := map[models.Architecture]int{
		models.ANN:  p.ANN,
		models.CNN:  p.CNN,
		models.LSTM: p.LSTM,
		models.GRU:  p.GRU,
	}
	fs := make([]*architectures.Factory, 0, len(models.Architectures))
	for _, arch := range models.Architectures {
		f, err := architectures.NewFactory(arch, patience[arch], cfg.Experiment.LearningRate)
		if err != nil {
			return nil, fmt.Errorf("model factory: %w", err)
		}
		fs = append(fs, f)
	}
	return fs, nil
}

func ProvideModelFactories(fs []*architectures.Factory) []service.ModelFactory {
	out := make([]service.ModelFactory, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

func ProvideModelBuilders(fs []*architectures.Factory) []usecase.ModelBuilder {
	out := make([]usecase.ModelBuilder, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

func ProvideExperimentConfig(cfg *config.Config) usecase.ExperimentConfig {
	return usecase.ExperimentConfig{
		SplitDate:   cfg.SplitTime(),
		WindowSizes: cfg.Experiment.WindowSizes,
		Repetitions: cfg.Experiment.Repetitions,
		Epochs:      cfg.Experiment.Epochs,
		BatchSize:   cfg.Experiment.BatchSize,
		Seed:        cfg.Experiment.Seed,
	}
}

func ProvideReportConfig(cfg *config.Config) usecase.ReportConfig {
	return usecase.ReportConfig{
		FilePattern:      cfg.Report.FilePattern,
		AggregatePattern: cfg.Report.AggregatePattern,
		WriteAggregates:  cfg.Report.WriteAggregates,
		MultiWindow:      len(cfg.Experiment.WindowSizes) > 1,
	}
}

// ProvidePipeline creates the per-symbol experiment pipeline.
func ProvidePipeline(
	cfg *config.Config,
	experiments *usecase.ExperimentRunner,
	reporter *usecase.Reporter,
	rec repository.Metrics,
	log *applogger.Logger,
) *usecase.Pipeline {
	return usecase.NewPipeline(experiments, reporter, rec, log,
		cfg.Experiment.Symbols, cfg.Experiment.ContinueOnError)
}

func ProvideRenderer(cfg *config.Config) *diagram.Renderer {
	return diagram.NewRenderer(cfg.Diagram.Width)
}

func ProvideDiagramUseCase(
	cfg *config.Config,
	builders []usecase.ModelBuilder,
	renderer *diagram.Renderer,
	log *applogger.Logger,
) *usecase.DiagramUseCase {
	return usecase.NewDiagramUseCase(builders, renderer, log, cfg.Diagram.Dir, cfg.Diagram.WindowSize)
}

func ProvideComparisonUseCase(
	cfg *config.Config,
	store repository.PredictionStore,
	log *applogger.Logger,
	rc usecase.ReportConfig,
) *usecase.ComparisonUseCase {
	return usecase.NewComparisonUseCase(store, log, rc, cfg.Report.ComparisonPattern, cfg.Experiment.WindowSizes)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	rec *metrics.Recorder,
	id runner.RunID,
	pipeline *usecase.Pipeline,
	diagrams *usecase.DiagramUseCase,
	comparer *usecase.ComparisonUseCase,
) *runner.App {
	return runner.New(cfg, log, rec, id, pipeline, diagrams, comparer)
}
