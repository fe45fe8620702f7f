package usecase

import (
	"context"
	"fmt"

	"ForecastBench/internal/domain/models"
	drepo "ForecastBench/internal/domain/repository"
	applogger "ForecastBench/pkg/logger"
	"ForecastBench/pkg/util"
)

// ReportConfig names the output files.
type ReportConfig struct {
	FilePattern      string // e.g. predictions_%s.csv
	AggregatePattern string
	WriteAggregates  bool
	// MultiWindow adds a _w<N> suffix so window sizes do not overwrite
	// each other.
	MultiWindow bool
}

// OutputName returns the file name for symbol at window w.
func (c ReportConfig) OutputName(pattern, symbol string, w int) string {
	name := util.SymbolFile(pattern, symbol)
	if c.MultiWindow {
		name = util.WithSuffix(name, fmt.Sprintf("_w%d", w))
	}
	return name
}

// Reporter writes the per-symbol comparison tables and logs the aggregates.
type Reporter struct {
	store drepo.PredictionStore
	log   *applogger.Logger
	cfg   ReportConfig
}

func NewReporter(store drepo.PredictionStore, log *applogger.Logger, cfg ReportConfig) *Reporter {
	return &Reporter{store: store, log: log, cfg: cfg}
}

// Report writes one window's actual-vs-ensemble table.
func (r *Reporter) Report(ctx context.Context, wr models.WindowReport) error {
	if len(wr.Actual) == 0 {
		return fmt.Errorf("%s: %w: window %d has no held-out rows", wr.Symbol, ErrDegenerateWindow, wr.Window)
	}

	for _, a := range wr.Aggregates {
		r.log.Info("Aggregate",
			applogger.String("symbol", wr.Symbol),
			applogger.String("arch", string(a.Architecture)),
			applogger.Int("window", a.Window),
			applogger.Int("runs", a.Runs),
			applogger.Float64("min_mse", a.MinMSE),
			applogger.Float64("mean_mse", a.MeanMSE),
			applogger.Float64("std_mse", a.StdMSE),
			applogger.Float64("mean_r2", a.MeanR2),
		)
	}

	path, err := r.store.WritePredictions(ctx, r.cfg.OutputName(r.cfg.FilePattern, wr.Symbol, wr.Window), wr.Table())
	if err != nil {
		return fmt.Errorf("report %s: %w", wr.Symbol, err)
	}
	r.log.Info("Predictions written",
		applogger.String("symbol", wr.Symbol),
		applogger.Int("window", wr.Window),
		applogger.Int("rows", len(wr.Actual)),
		applogger.String("path", path),
	)

	if !r.cfg.WriteAggregates {
		return nil
	}
	path, err = r.store.WriteAggregates(ctx, r.cfg.OutputName(r.cfg.AggregatePattern, wr.Symbol, wr.Window), wr.Aggregates)
	if err != nil {
		return fmt.Errorf("report %s aggregates: %w", wr.Symbol, err)
	}
	r.log.Info("Aggregates written", applogger.String("symbol", wr.Symbol), applogger.String("path", path))
	return nil
}

// ReportSymbol reports every window of a symbol.
func (r *Reporter) ReportSymbol(ctx context.Context, sr models.SymbolReport) error {
	for _, wr := range sr.Windows {
		if err := r.Report(ctx, wr); err != nil {
			return err
		}
	}
	return nil
}
