package usecase

import (
	"context"
	"errors"
	"fmt"

	"ForecastBench/internal/domain/models"
	drepo "ForecastBench/internal/domain/repository"
	"ForecastBench/internal/services/stats"
	applogger "ForecastBench/pkg/logger"
)

// ComparisonUseCase runs pairwise Diebold-Mariano tests over the prediction
// tables written by the Reporter.
type ComparisonUseCase struct {
	store   drepo.PredictionStore
	log     *applogger.Logger
	cfg     ReportConfig
	pattern string // comparison file pattern, e.g. dm_%s.csv
	windows []int
}

func NewComparisonUseCase(store drepo.PredictionStore, log *applogger.Logger, cfg ReportConfig, pattern string, windows []int) *ComparisonUseCase {
	return &ComparisonUseCase{store: store, log: log, cfg: cfg, pattern: pattern, windows: windows}
}

// Compare tests every pair of architectures for symbol, once per configured
// window, and writes the results. Pairs whose loss differential is constant
// are logged and skipped.
func (uc *ComparisonUseCase) Compare(ctx context.Context, symbol string) ([]models.Comparison, error) {
	var all []models.Comparison
	for _, w := range uc.windows {
		tbl, err := uc.store.ReadPredictions(ctx, uc.cfg.OutputName(uc.cfg.FilePattern, symbol, w))
		if err != nil {
			return all, fmt.Errorf("compare %s: %w", symbol, err)
		}
		cs, err := uc.compareTable(symbol, w, tbl)
		if err != nil {
			return all, err
		}
		path, err := uc.store.WriteComparisons(ctx, uc.cfg.OutputName(uc.pattern, symbol, w), cs)
		if err != nil {
			return all, fmt.Errorf("compare %s: %w", symbol, err)
		}
		uc.log.Info("Comparisons written",
			applogger.String("symbol", symbol),
			applogger.Int("window", w),
			applogger.Int("pairs", len(cs)),
			applogger.String("path", path),
		)
		all = append(all, cs...)
	}
	return all, nil
}

func (uc *ComparisonUseCase) compareTable(symbol string, w int, tbl models.PredictionTable) ([]models.Comparison, error) {
	var out []models.Comparison
	for i := 0; i < len(tbl.Columns); i++ {
		for j := i + 1; j < len(tbl.Columns); j++ {
			a, b := tbl.Columns[i], tbl.Columns[j]
			res, err := stats.DieboldMariano(tbl.Actual, tbl.Predictions[a], tbl.Predictions[b], 1)
			if errors.Is(err, stats.ErrZeroVariance) || errors.Is(err, stats.ErrNegativeVariance) {
				uc.log.Warn("Skipping comparison with degenerate loss differential",
					applogger.Error(err),
					applogger.String("symbol", symbol),
					applogger.Int("window", w),
					applogger.String("model_a", string(a)),
					applogger.String("model_b", string(b)),
				)
				continue
			}
			if err != nil {
				return out, fmt.Errorf("compare %s %s vs %s: %w", symbol, a, b, err)
			}
			c := models.Comparison{
				Symbol:    symbol,
				A:         a,
				B:         b,
				N:         res.N,
				MeanDiff:  res.MeanDiff,
				Statistic: res.Statistic,
				PValue:    res.PValue,
			}
			uc.log.Info("Diebold-Mariano",
				applogger.String("symbol", symbol),
				applogger.Int("window", w),
				applogger.String("model_a", string(a)),
				applogger.String("model_b", string(b)),
				applogger.Float64("statistic", c.Statistic),
				applogger.Float64("p_value", c.PValue),
			)
			out = append(out, c)
		}
	}
	return out, nil
}
