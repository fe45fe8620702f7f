package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
// It owns a private registry: experiments are batch jobs, so the registry is
// exported once as a node_exporter textfile rather than scraped.
type Recorder struct {
	registry    *prometheus.Registry
	fitsTotal   *prometheus.CounterVec
	epochsTotal *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	testMSE     *prometheus.GaugeVec
	fitDuration *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		fitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecastbench_fits_total",
				Help: "Total number of completed model fits",
			},
			[]string{"architecture", "window"},
		),
		epochsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecastbench_epochs_total",
				Help: "Total number of training epochs run",
			},
			[]string{"architecture", "window"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecastbench_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		testMSE: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "forecastbench_test_mse",
				Help: "Most recent held-out mean squared error",
			},
			[]string{"symbol", "architecture", "window"},
		),
		fitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forecastbench_fit_duration_seconds",
				Help:    "Duration of model fits in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
			},
			[]string{"architecture"},
		),
	}
}

// RecordFit records one completed fit.
func (r *Recorder) RecordFit(arch string, window, epochs int, seconds float64) {
	w := strconv.Itoa(window)
	r.fitsTotal.WithLabelValues(arch, w).Inc()
	r.epochsTotal.WithLabelValues(arch, w).Add(float64(epochs))
	r.fitDuration.WithLabelValues(arch).Observe(seconds)
}

// RecordTestError records the held-out error of the latest fit.
func (r *Recorder) RecordTestError(symbol, arch string, window int, mse float64) {
	r.testMSE.WithLabelValues(symbol, arch, strconv.Itoa(window)).Set(mse)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// Gatherer exposes the private registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
