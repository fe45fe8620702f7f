package models

import "time"

// Architecture names one of the compared network families.
type Architecture string

const (
	ANN  Architecture = "ann"
	CNN  Architecture = "cnn"
	LSTM Architecture = "lstm"
	GRU  Architecture = "gru"
)

// Architectures lists the families in report column order.
var Architectures = []Architecture{ANN, CNN, LSTM, GRU}

// RunResult is one training repetition of one architecture at one window.
type RunResult struct {
	Symbol       string
	Architecture Architecture
	Window       int
	Repetition   int
	Seed         int64

	Epochs   int
	Stopped  bool // early stopping fired before the epoch ceiling
	Duration time.Duration

	TrainMSE float64
	TestMSE  float64
	R2       float64
	AdjR2    float64

	Predictions []float64 // scaled, one per held-out target
}

// Aggregate summarises the repetitions of one architecture at one window.
type Aggregate struct {
	Architecture Architecture
	Window       int
	Runs         int
	MinMSE       float64
	MeanMSE      float64
	StdMSE       float64 // population standard deviation
	MeanR2       float64
}

// WindowReport is everything produced for one symbol at one window size.
type WindowReport struct {
	Symbol     string
	Window     int
	Actual     []float64 // scaled held-out targets
	Runs       []RunResult
	Aggregates []Aggregate
	Ensembles  map[Architecture][]float64
}

// Table lays the report out as actual-vs-ensemble columns.
func (r WindowReport) Table() PredictionTable {
	t := PredictionTable{Actual: r.Actual, Predictions: make(map[Architecture][]float64, len(r.Ensembles))}
	for _, a := range Architectures {
		if p, ok := r.Ensembles[a]; ok {
			t.Columns = append(t.Columns, a)
			t.Predictions[a] = p
		}
	}
	return t
}

// SymbolReport collects the window reports of one symbol.
type SymbolReport struct {
	Symbol  string
	Seed    int64
	Windows []WindowReport
}

// PredictionTable is the on-disk comparison table: the actual held-out values
// and one prediction column per architecture, all of equal length.
type PredictionTable struct {
	Actual      []float64
	Columns     []Architecture
	Predictions map[Architecture][]float64
}

func (t PredictionTable) Rows() int { return len(t.Actual) }
