package architectures

import (
	"fmt"
	"math/rand"

	"ForecastBench/internal/domain/models"
	"ForecastBench/internal/domain/service"
	"ForecastBench/pkg/nn"
)

var constructors = map[models.Architecture]Constructor{
	models.ANN:  buildANN,
	models.CNN:  buildCNN,
	models.LSTM: buildLSTM,
	models.GRU:  buildGRU,
}

// defaultPatience is the early-stopping patience of the published experiment.
var defaultPatience = map[models.Architecture]int{
	models.ANN:  2,
	models.CNN:  5,
	models.LSTM: 5,
	models.GRU:  5,
}

// Factory builds one architecture and carries its training settings.
type Factory struct {
	arch         models.Architecture
	patience     int
	learningRate float64
	build        Constructor
}

var _ service.ModelFactory = (*Factory)(nil)

// NewFactory returns the factory for arch.
func NewFactory(arch models.Architecture, patience int, lr float64) (*Factory, error) {
	build, ok := constructors[arch]
	if !ok {
		return nil, fmt.Errorf("unknown architecture %q", arch)
	}
	if patience < 1 {
		return nil, fmt.Errorf("%s: patience must be at least 1, got %d", arch, patience)
	}
	if lr <= 0 {
		lr = DefaultLearningRate
	}
	return &Factory{arch: arch, patience: patience, learningRate: lr, build: build}, nil
}

// Default returns the four factories in report order with the published
// patience and learning rate.
func Default() []*Factory {
	out := make([]*Factory, 0, len(models.Architectures))
	for _, a := range models.Architectures {
		f, _ := NewFactory(a, defaultPatience[a], DefaultLearningRate)
		out = append(out, f)
	}
	return out
}

func (f *Factory) Architecture() models.Architecture { return f.arch }

func (f *Factory) Patience() int { return f.patience }

// Model builds the concrete network; diagrams need its layer summary.
func (f *Factory) Model(window int, rng *rand.Rand) (*nn.Sequential, error) {
	m, err := f.build(window, rng, f.learningRate)
	if err != nil {
		return nil, fmt.Errorf("build %s for window %d: %w", f.arch, window, err)
	}
	return m, nil
}

func (f *Factory) Build(window int, rng *rand.Rand) (service.Regressor, error) {
	m, err := f.Model(window, rng)
	if err != nil {
		return nil, err
	}
	return m, nil
}
