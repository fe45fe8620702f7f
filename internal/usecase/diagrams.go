package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"

	"ForecastBench/internal/domain/models"
	"ForecastBench/internal/services/diagram"
	applogger "ForecastBench/pkg/logger"
	"ForecastBench/pkg/nn"
)

// ModelBuilder exposes the concrete network of an architecture.
type ModelBuilder interface {
	Architecture() models.Architecture
	Model(window int, rng *rand.Rand) (*nn.Sequential, error)
}

// DiagramUseCase renders every architecture's layer graph. It never touches
// series data or prediction files.
type DiagramUseCase struct {
	builders []ModelBuilder
	renderer *diagram.Renderer
	log      *applogger.Logger
	dir      string
	window   int
}

func NewDiagramUseCase(builders []ModelBuilder, renderer *diagram.Renderer, log *applogger.Logger, dir string, window int) *DiagramUseCase {
	return &DiagramUseCase{builders: builders, renderer: renderer, log: log, dir: dir, window: window}
}

// Render writes <arch>_plot.png for every architecture and returns the paths.
func (uc *DiagramUseCase) Render(ctx context.Context) ([]string, error) {
	paths := make([]string, 0, len(uc.builders))
	for _, b := range uc.builders {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		arch := b.Architecture()
		m, err := b.Model(uc.window, rand.New(rand.NewSource(1)))
		if err != nil {
			return paths, fmt.Errorf("diagram %s: %w", arch, err)
		}
		path := filepath.Join(uc.dir, fmt.Sprintf("%s_plot.png", arch))
		if err := uc.renderer.Render(path, m); err != nil {
			return paths, fmt.Errorf("diagram %s: %w", arch, err)
		}
		uc.log.Info("Diagram written",
			applogger.String("arch", string(arch)),
			applogger.Int("layers", len(m.Summary())),
			applogger.Int("params", m.CountParams()),
			applogger.String("path", path),
		)
		paths = append(paths, path)
	}
	return paths, nil
}
