// Package architectures builds the four compared forecasting networks. Every
// model maps a (window, 1) input to one scaled price and is compiled with
// mean squared error and Adam.
package architectures

import (
	"math/rand"

	"ForecastBench/pkg/nn"
)

const DefaultLearningRate = 0.001

// Constructor builds a compiled model for a window size.
type Constructor func(window int, rng *rand.Rand, lr float64) (*nn.Sequential, error)

func input(window int) nn.Shape { return nn.Shape{Steps: window, Features: 1} }

func compile(m *nn.Sequential, lr float64) (*nn.Sequential, error) {
	if err := m.Compile(nn.MeanSquaredError{}, nn.NewAdam(lr)); err != nil {
		return nil, err
	}
	return m, nil
}

// ANN is three per-step dense layers narrowing 64→32→16, flattened into a
// single linear unit.
func ANN(window int, rng *rand.Rand) (*nn.Sequential, error) {
	return buildANN(window, rng, DefaultLearningRate)
}

func buildANN(window int, rng *rand.Rand, lr float64) (*nn.Sequential, error) {
	m := nn.NewSequential("ann", input(window), rng).
		Add(nn.NewDense(64, nn.ReLU)).
		Add(nn.NewDense(32, nn.ReLU)).
		Add(nn.NewDense(16, nn.ReLU)).
		Add(nn.NewFlatten()).
		Add(nn.NewDense(1, nn.Linear))
	return compile(m, lr)
}

// CNN is two temporal convolutions (128 filters of width 2, then 64 of width
// 1) and one 2-step max pool. Windows shorter than 3 leave nothing to pool
// and fail to build.
func CNN(window int, rng *rand.Rand) (*nn.Sequential, error) {
	return buildCNN(window, rng, DefaultLearningRate)
}

func buildCNN(window int, rng *rand.Rand, lr float64) (*nn.Sequential, error) {
	m := nn.NewSequential("cnn", input(window), rng).
		Add(nn.NewConv1D(128, 2, nn.ReLU)).
		Add(nn.NewConv1D(64, 1, nn.ReLU)).
		Add(nn.NewMaxPooling1D(2)).
		Add(nn.NewFlatten()).
		Add(nn.NewDense(1, nn.Linear))
	return compile(m, lr)
}

func recurrentOpts(returnSequences bool) nn.RecurrentOptions {
	o := nn.DefaultRecurrentOptions()
	o.Activation = nn.ReLU
	o.KernelInit = nn.LecunUniform
	o.ReturnSequences = returnSequences
	return o
}

// LSTM stacks 512, 256 and 128 unit LSTM layers, each followed by 20%
// dropout; only the last one collapses the time axis.
func LSTM(window int, rng *rand.Rand) (*nn.Sequential, error) {
	return buildLSTM(window, rng, DefaultLearningRate)
}

func buildLSTM(window int, rng *rand.Rand, lr float64) (*nn.Sequential, error) {
	m := nn.NewSequential("lstm", input(window), rng).
		Add(nn.NewLSTM(512, recurrentOpts(true))).
		Add(nn.NewDropout(0.2)).
		Add(nn.NewLSTM(256, recurrentOpts(true))).
		Add(nn.NewDropout(0.2)).
		Add(nn.NewLSTM(128, recurrentOpts(false))).
		Add(nn.NewDropout(0.2)).
		Add(nn.NewDense(1, nn.Linear))
	return compile(m, lr)
}

// GRU has the LSTM topology with gated recurrent units.
func GRU(window int, rng *rand.Rand) (*nn.Sequential, error) {
	return buildGRU(window, rng, DefaultLearningRate)
}

func buildGRU(window int, rng *rand.Rand, lr float64) (*nn.Sequential, error) {
	m := nn.NewSequential("gru", input(window), rng).
		Add(nn.NewGRU(512, recurrentOpts(true))).
		Add(nn.NewDropout(0.2)).
		Add(nn.NewGRU(256, recurrentOpts(true))).
		Add(nn.NewDropout(0.2)).
		Add(nn.NewGRU(128, recurrentOpts(false))).
		Add(nn.NewDropout(0.2)).
		Add(nn.NewDense(1, nn.Linear))
	return compile(m, lr)
}
