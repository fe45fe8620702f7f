package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	drepo "ForecastBench/internal/domain/repository"
	applogger "ForecastBench/pkg/logger"
)

// Pipeline runs the experiment and report for every symbol in turn.
type Pipeline struct {
	runner          *ExperimentRunner
	reporter        *Reporter
	metrics         drepo.Metrics
	log             *applogger.Logger
	symbols         []string
	continueOnError bool
}

func NewPipeline(
	runner *ExperimentRunner,
	reporter *Reporter,
	metrics drepo.Metrics,
	log *applogger.Logger,
	symbols []string,
	continueOnError bool,
) *Pipeline {
	return &Pipeline{
		runner:          runner,
		reporter:        reporter,
		metrics:         metrics,
		log:             log,
		symbols:         symbols,
		continueOnError: continueOnError,
	}
}

// Run processes the symbols sequentially. The first failure aborts the run
// unless continueOnError is set, in which case all failures are joined.
func (p *Pipeline) Run(ctx context.Context) error {
	p.log.Info("Pipeline started",
		applogger.Strings("symbols", p.symbols),
		applogger.Int64("seed", p.runner.Seed()),
	)
	start := time.Now()
	var errs []error
	done := 0
	for _, sym := range p.symbols {
		if err := p.runSymbol(ctx, sym); err != nil {
			p.metrics.RecordError("symbol")
			if !p.continueOnError || ctx.Err() != nil {
				return err
			}
			p.log.Error("Symbol failed", applogger.String("symbol", sym), applogger.Error(err))
			errs = append(errs, err)
			continue
		}
		done++
	}
	p.log.Info("Pipeline finished",
		applogger.Int("symbols_ok", done),
		applogger.Int("symbols_failed", len(errs)),
		applogger.Duration("took", time.Since(start)),
	)
	return errors.Join(errs...)
}

func (p *Pipeline) runSymbol(ctx context.Context, symbol string) error {
	report, err := p.runner.RunSymbol(ctx, symbol)
	if err != nil {
		return err
	}
	if err := p.reporter.ReportSymbol(ctx, report); err != nil {
		return fmt.Errorf("%s: %w", symbol, err)
	}
	return nil
}
