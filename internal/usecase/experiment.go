package usecase

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strconv"
	"time"

	"ForecastBench/internal/domain/models"
	drepo "ForecastBench/internal/domain/repository"
	"ForecastBench/internal/domain/service"
	"ForecastBench/internal/services/features"
	"ForecastBench/internal/services/stats"
	applogger "ForecastBench/pkg/logger"
	"ForecastBench/pkg/nn"
)

// ErrDegenerateWindow reports a window size (or split) that leaves no
// training or no held-out examples. It is a configuration error.
var ErrDegenerateWindow = errors.New("degenerate window")

// ExperimentConfig holds the training-loop settings.
type ExperimentConfig struct {
	SplitDate   time.Time
	WindowSizes []int
	Repetitions int
	Epochs      int
	BatchSize   int
	Seed        int64 // 0 derives one from the clock
}

// ExperimentRunner trains and evaluates every architecture on one symbol.
type ExperimentRunner struct {
	source    drepo.SeriesSource
	factories []service.ModelFactory
	metrics   drepo.Metrics
	log       *applogger.Logger
	cfg       ExperimentConfig
	seed      int64
}

func NewExperimentRunner(
	source drepo.SeriesSource,
	factories []service.ModelFactory,
	metrics drepo.Metrics,
	log *applogger.Logger,
	cfg ExperimentConfig,
) *ExperimentRunner {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.Repetitions < 1 {
		cfg.Repetitions = 1
	}
	return &ExperimentRunner{
		source:    source,
		factories: factories,
		metrics:   metrics,
		log:       log,
		cfg:       cfg,
		seed:      seed,
	}
}

// Seed is the effective run seed.
func (r *ExperimentRunner) Seed() int64 { return r.seed }

// modelSeed derives an independent seed for one model instance.
func (r *ExperimentRunner) modelSeed(symbol string, window, rep int, arch models.Architecture) int64 {
	h := fnv.New64a()
	h.Write([]byte(strconv.FormatInt(r.seed, 10)))
	for _, part := range []string{symbol, strconv.Itoa(window), strconv.Itoa(rep), string(arch)} {
		h.Write([]byte{0})
		h.Write([]byte(part))
	}
	return int64(h.Sum64() &^ (1 << 63))
}

// RunSymbol loads, splits and scales the symbol's series, then runs every
// configured window size.
func (r *ExperimentRunner) RunSymbol(ctx context.Context, symbol string) (models.SymbolReport, error) {
	report := models.SymbolReport{Symbol: symbol, Seed: r.seed}

	series, err := r.source.Load(ctx, symbol)
	if err != nil {
		r.metrics.RecordError("load")
		return report, fmt.Errorf("load %s: %w", symbol, err)
	}
	train, test := series.Split(r.cfg.SplitDate)
	if train.Len() == 0 || test.Len() == 0 {
		return report, fmt.Errorf("%s: %w: split at %s leaves %d training and %d held-out points",
			symbol, ErrDegenerateWindow, r.cfg.SplitDate.Format("2006-01-02"), train.Len(), test.Len())
	}

	scaler := features.NewMinMaxScaler()
	trainScaled, err := scaler.FitTransform(train.Closes())
	if err != nil {
		return report, fmt.Errorf("%s: scale training slice: %w", symbol, err)
	}
	testScaled, err := scaler.Transform(test.Closes())
	if err != nil {
		return report, fmt.Errorf("%s: scale held-out slice: %w", symbol, err)
	}
	lo, scale := scaler.Coefficients()
	r.log.Info("Series prepared",
		applogger.String("symbol", symbol),
		applogger.Int("train_points", train.Len()),
		applogger.Int("test_points", test.Len()),
		applogger.Float64("scaler_min", lo),
		applogger.Float64("scaler_range", scale),
		applogger.Int64("seed", r.seed),
	)

	for _, w := range r.cfg.WindowSizes {
		wr, err := r.RunWindow(ctx, symbol, w, trainScaled, testScaled)
		if err != nil {
			return report, err
		}
		report.Windows = append(report.Windows, wr)
	}
	return report, nil
}

// RunWindow trains every architecture Repetitions times on one window size
// and aggregates the results.
func (r *ExperimentRunner) RunWindow(ctx context.Context, symbol string, w int, train, test []float64) (models.WindowReport, error) {
	wr := models.WindowReport{Symbol: symbol, Window: w}

	xTrain, yTrain, err := features.Window(train, w)
	if err != nil {
		return wr, fmt.Errorf("%s: %w", symbol, err)
	}
	xTest, yTest, err := features.WindowAfter(train, test, w)
	if err != nil {
		return wr, fmt.Errorf("%s: %w", symbol, err)
	}
	if len(xTrain) == 0 || len(xTest) == 0 {
		return wr, fmt.Errorf("%s: %w: window %d gives %d training and %d held-out examples",
			symbol, ErrDegenerateWindow, w, len(xTrain), len(xTest))
	}
	wr.Actual = yTest

	byArch := make(map[models.Architecture][]models.RunResult, len(r.factories))
	for rep := 1; rep <= r.cfg.Repetitions; rep++ {
		for _, f := range r.factories {
			res, err := r.runOne(ctx, symbol, w, rep, f, xTrain, yTrain, xTest, yTest)
			if err != nil {
				return wr, err
			}
			byArch[f.Architecture()] = append(byArch[f.Architecture()], res)
			wr.Runs = append(wr.Runs, res)
		}
	}

	wr.Ensembles = make(map[models.Architecture][]float64, len(r.factories))
	for _, f := range r.factories {
		arch := f.Architecture()
		runs := byArch[arch]
		agg, err := stats.Aggregate(arch, w, runs)
		if err != nil {
			return wr, err
		}
		preds := make([][]float64, len(runs))
		for i, run := range runs {
			preds[i] = run.Predictions
		}
		ens, err := stats.EnsembleMean(preds)
		if err != nil {
			return wr, fmt.Errorf("%s %s w=%d: %w", symbol, arch, w, err)
		}
		wr.Aggregates = append(wr.Aggregates, agg)
		wr.Ensembles[arch] = ens
	}
	return wr, nil
}

func (r *ExperimentRunner) runOne(
	ctx context.Context,
	symbol string,
	w, rep int,
	f service.ModelFactory,
	xTrain [][]float64, yTrain []float64,
	xTest [][]float64, yTest []float64,
) (models.RunResult, error) {
	arch := f.Architecture()
	seed := r.modelSeed(symbol, w, rep, arch)
	res := models.RunResult{Symbol: symbol, Architecture: arch, Window: w, Repetition: rep, Seed: seed}
	fail := func(stage string, err error) (models.RunResult, error) {
		r.metrics.RecordError(stage)
		return res, fmt.Errorf("%s %s w=%d rep=%d: %s: %w", symbol, arch, w, rep, stage, err)
	}

	model, err := f.Build(w, rand.New(rand.NewSource(seed)))
	if err != nil {
		return fail("build", err)
	}

	stopper := nn.NewEarlyStopping(f.Patience())
	progress := nn.CallbackFunc(func(epoch int, loss float64) bool {
		r.log.Debug("Epoch finished",
			applogger.String("symbol", symbol),
			applogger.String("arch", string(arch)),
			applogger.Int("window", w),
			applogger.Int("rep", rep),
			applogger.Int("epoch", epoch),
			applogger.Float64("loss", loss),
		)
		return false
	})

	start := time.Now()
	hist, err := model.Fit(ctx, xTrain, yTrain, nn.FitConfig{
		Epochs:    r.cfg.Epochs,
		BatchSize: r.cfg.BatchSize,
		Callbacks: []nn.Callback{progress, stopper},
	})
	if err != nil {
		return fail("fit", err)
	}
	res.Duration = time.Since(start)
	res.Epochs = hist.Epochs()
	res.Stopped = hist.Stopped

	if res.TrainMSE, err = model.Evaluate(xTrain, yTrain); err != nil {
		return fail("evaluate", err)
	}
	if res.Predictions, err = model.Predict(xTest); err != nil {
		return fail("predict", err)
	}
	r.log.Debug("Held-out predictions",
		applogger.String("symbol", symbol),
		applogger.String("arch", string(arch)),
		applogger.Int("rep", rep),
		applogger.Floats("head", res.Predictions[:min(len(res.Predictions), 5)]),
	)
	if res.TestMSE, err = stats.MSE(res.Predictions, yTest); err != nil {
		return fail("evaluate", err)
	}
	if math.IsNaN(res.TestMSE) || math.IsInf(res.TestMSE, 0) || math.IsNaN(res.TrainMSE) {
		return fail("evaluate", nn.ErrNonFiniteLoss)
	}
	if res.R2, res.AdjR2, err = stats.RSquared(res.Predictions, yTest, w); err != nil {
		return fail("evaluate", err)
	}

	r.metrics.RecordFit(string(arch), w, res.Epochs, res.Duration.Seconds())
	r.metrics.RecordTestError(symbol, string(arch), w, res.TestMSE)
	r.log.Info("Run finished",
		applogger.String("symbol", symbol),
		applogger.String("arch", string(arch)),
		applogger.Int("window", w),
		applogger.Int("rep", rep),
		applogger.Int("epochs", res.Epochs),
		applogger.Bool("early_stopped", res.Stopped),
		applogger.Float64("train_mse", res.TrainMSE),
		applogger.Float64("test_mse", res.TestMSE),
		applogger.Float64("r2", res.R2),
		applogger.Duration("took", res.Duration),
	)
	return res, nil
}
