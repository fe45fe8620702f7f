package repository

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ForecastBench/internal/domain/models"
	"ForecastBench/internal/domain/repository"
)

// CSVStore writes experiment tables as flat CSV files under one directory.
type CSVStore struct {
	dir string
}

// NewCSVStore creates a store rooted at dir.
func NewCSVStore(dir string) repository.PredictionStore {
	return &CSVStore{dir: dir}
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func (s *CSVStore) path(name string) string { return filepath.Join(s.dir, name) }

// write creates name and streams rows into it.
func (s *CSVStore) write(ctx context.Context, name string, header []string, rows func(w *csv.Writer) error) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", s.dir, err)
	}
	path := s.path(name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	w := csv.NewWriter(bw)
	werr := w.Write(header)
	if werr == nil {
		werr = rows(w)
	}
	w.Flush()
	if werr == nil {
		werr = w.Error()
	}
	if werr == nil {
		werr = bw.Flush()
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return "", fmt.Errorf("write %s: %w", path, werr)
	}
	return path, nil
}

// WritePredictions writes the actual column followed by one column per
// architecture, in table order.
func (s *CSVStore) WritePredictions(ctx context.Context, name string, t models.PredictionTable) (string, error) {
	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, "actual")
	for _, a := range t.Columns {
		p, ok := t.Predictions[a]
		if !ok {
			return "", fmt.Errorf("%s: no predictions for %s", name, a)
		}
		if len(p) != len(t.Actual) {
			return "", fmt.Errorf("%s: %s has %d predictions for %d actual values", name, a, len(p), len(t.Actual))
		}
		header = append(header, string(a))
	}
	return s.write(ctx, name, header, func(w *csv.Writer) error {
		row := make([]string, len(header))
		for i, v := range t.Actual {
			row[0] = formatFloat(v)
			for j, a := range t.Columns {
				row[j+1] = formatFloat(t.Predictions[a][i])
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadPredictions parses a file written by WritePredictions.
func (s *CSVStore) ReadPredictions(ctx context.Context, name string) (models.PredictionTable, error) {
	var t models.PredictionTable
	if err := ctx.Err(); err != nil {
		return t, err
	}
	path := s.path(name)
	f, err := os.Open(path)
	if err != nil {
		return t, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	header, err := r.Read()
	if err != nil {
		return t, fmt.Errorf("%s: read header: %w", path, err)
	}
	if len(header) < 2 || strings.ToLower(strings.TrimSpace(header[0])) != "actual" {
		return t, fmt.Errorf("%s: %w: header %v", path, ErrMalformedRow, header)
	}
	t.Predictions = make(map[models.Architecture][]float64, len(header)-1)
	for _, h := range header[1:] {
		a := models.Architecture(strings.ToLower(strings.TrimSpace(h)))
		if _, dup := t.Predictions[a]; dup {
			return t, fmt.Errorf("%s: %w: duplicate column %s", path, ErrMalformedRow, a)
		}
		t.Columns = append(t.Columns, a)
		t.Predictions[a] = nil
	}

	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return t, fmt.Errorf("%s: line %d: %w", path, line, err)
		}
		vals := make([]float64, len(rec))
		for i, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return t, fmt.Errorf("%s: %w: line %d column %s", path, ErrMalformedRow, line, header[i])
			}
			vals[i] = v
		}
		t.Actual = append(t.Actual, vals[0])
		for j, a := range t.Columns {
			t.Predictions[a] = append(t.Predictions[a], vals[j+1])
		}
	}
	return t, nil
}

func (s *CSVStore) WriteAggregates(ctx context.Context, name string, aggs []models.Aggregate) (string, error) {
	header := []string{"architecture", "window", "runs", "min_mse", "mean_mse", "std_mse", "mean_r2"}
	return s.write(ctx, name, header, func(w *csv.Writer) error {
		for _, a := range aggs {
			err := w.Write([]string{
				string(a.Architecture),
				strconv.Itoa(a.Window),
				strconv.Itoa(a.Runs),
				formatFloat(a.MinMSE),
				formatFloat(a.MeanMSE),
				formatFloat(a.StdMSE),
				formatFloat(a.MeanR2),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *CSVStore) WriteComparisons(ctx context.Context, name string, cs []models.Comparison) (string, error) {
	header := []string{"model_a", "model_b", "n", "mean_diff", "statistic", "p_value"}
	return s.write(ctx, name, header, func(w *csv.Writer) error {
		for _, c := range cs {
			err := w.Write([]string{
				string(c.A),
				string(c.B),
				strconv.Itoa(c.N),
				formatFloat(c.MeanDiff),
				formatFloat(c.Statistic),
				formatFloat(c.PValue),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}
