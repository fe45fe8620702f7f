package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"ForecastBench/internal/domain/models"
	"ForecastBench/pkg/config"
	applogger "ForecastBench/pkg/logger"
	"ForecastBench/pkg/metrics"
)

// Mode selects what a single invocation does.
type Mode string

const (
	ModePipeline Mode = "pipeline"
	ModePlot     Mode = "plot"
	ModeCompare  Mode = "dm"
)

var (
	ErrInvalidArgs = errors.New("invalid number of arguments")
	ErrUnknownMode = errors.New("unknown mode")
)

// ParseMode maps the positional arguments to a mode. No argument runs the
// pipeline.
func ParseMode(args []string) (Mode, error) {
	switch len(args) {
	case 0:
		return ModePipeline, nil
	case 1:
		switch m := Mode(args[0]); m {
		case ModePlot, ModeCompare:
			return m, nil
		}
		return "", fmt.Errorf("%w: %s", ErrUnknownMode, args[0])
	default:
		return "", ErrInvalidArgs
	}
}

// RunID identifies one invocation in the logs.
type RunID string

func NewRunID() RunID { return RunID(uuid.NewString()) }

type PipelineRunner interface {
	Run(ctx context.Context) error
}

type DiagramRenderer interface {
	Render(ctx context.Context) ([]string, error)
}

type Comparer interface {
	Compare(ctx context.Context, symbol string) ([]models.Comparison, error)
}

// App encapsulates one invocation of the tool.
type App struct {
	cfg      *config.Config
	log      *applogger.Logger
	metrics  *metrics.Recorder
	runID    RunID
	pipeline PipelineRunner
	diagrams DiagramRenderer
	comparer Comparer
}

func New(
	cfg *config.Config,
	log *applogger.Logger,
	rec *metrics.Recorder,
	runID RunID,
	pipeline PipelineRunner,
	diagrams DiagramRenderer,
	comparer Comparer,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		metrics:  rec,
		runID:    runID,
		pipeline: pipeline,
		diagrams: diagrams,
		comparer: comparer,
	}
}

func (a *App) RunID() RunID { return a.runID }

// Run executes mode until it finishes or the process is interrupted, then
// logs a deduplicated summary of the warnings and errors seen on the way.
func (a *App) Run(ctx context.Context, mode Mode) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := a.log.AddCollector(&applogger.CollectionConfig{})
	defer a.log.RemoveCollector()

	start := time.Now()
	a.log.Info("run started",
		applogger.String("mode", string(mode)),
		applogger.String("environment", a.cfg.Environment),
	)

	var err error
	switch mode {
	case ModePipeline:
		err = a.runPipeline(ctx)
	case ModePlot:
		err = a.runPlot(ctx)
	case ModeCompare:
		err = a.runCompare(ctx)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}

	if ctx.Err() != nil {
		a.log.Warn("interrupted", applogger.String("mode", string(mode)))
	}
	if err != nil {
		a.log.Error("run failed", applogger.String("mode", string(mode)), applogger.Error(err))
	}
	a.summarize(collector.Entries())
	a.log.Info("run finished",
		applogger.String("mode", string(mode)),
		applogger.Duration("elapsed", time.Since(start)),
		applogger.Bool("ok", err == nil),
	)
	return err
}

func (a *App) runPipeline(ctx context.Context) error {
	err := a.pipeline.Run(ctx)
	if path := a.cfg.Metrics.Textfile; path != "" {
		if werr := a.metrics.WriteTextfile(path); werr != nil {
			a.log.Warn("metrics textfile not written", applogger.String("path", path), applogger.Error(werr))
		} else {
			a.log.Debug("metrics textfile written", applogger.String("path", path))
		}
	}
	return err
}

func (a *App) runPlot(ctx context.Context) error {
	paths, err := a.diagrams.Render(ctx)
	if err != nil {
		return fmt.Errorf("render diagrams: %w", err)
	}
	a.log.Info("diagrams written", applogger.Strings("paths", paths))
	return nil
}

func (a *App) runCompare(ctx context.Context) error {
	for _, symbol := range a.cfg.Experiment.Symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := a.comparer.Compare(ctx, symbol); err != nil {
			return fmt.Errorf("compare %s: %w", symbol, err)
		}
	}
	return nil
}

func (a *App) summarize(entries []applogger.AggregatedLogEntry) {
	if len(entries) == 0 {
		a.log.Info("run summary: no warnings or errors")
		return
	}
	a.log.Info("run summary", applogger.Int("distinct", len(entries)))
	for _, e := range entries {
		a.log.Info("summary entry",
			applogger.String("entry", e.Message),
			applogger.String("severity", e.Level),
			applogger.Int("count", e.Count),
			applogger.String("caller", e.Caller),
		)
	}
}
