package repository

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"ForecastBench/internal/domain/models"
	"ForecastBench/internal/domain/repository"
	"ForecastBench/pkg/logger"
	"ForecastBench/pkg/util"
)

var (
	ErrMissingColumn = errors.New("close column not found")
	ErrMalformedRow  = errors.New("malformed row")
)

// CSVSeriesSource reads one CSV per symbol. The first column is the date
// index; the close column is found by header name, ignoring case.
type CSVSeriesSource struct {
	pattern     string
	closeColumn string
	log         *logger.Logger
}

// NewCSVSeriesSource creates a loader for files named by pattern, e.g.
// "../data/%s.csv".
func NewCSVSeriesSource(pattern, closeColumn string, log *logger.Logger) repository.SeriesSource {
	return &CSVSeriesSource{pattern: pattern, closeColumn: closeColumn, log: log}
}

func (s *CSVSeriesSource) Path(symbol string) string {
	return util.SymbolFile(s.pattern, symbol)
}

func (s *CSVSeriesSource) Load(ctx context.Context, symbol string) (models.Series, error) {
	if err := ctx.Err(); err != nil {
		return models.Series{}, err
	}
	path := s.Path(symbol)
	f, err := os.Open(path)
	if err != nil {
		return models.Series{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	points, err := s.parse(bufio.NewReader(f))
	if err != nil {
		return models.Series{}, fmt.Errorf("%s: %w", path, err)
	}
	slices.SortStableFunc(points, func(a, b models.Point) int { return a.Date.Compare(b.Date) })
	for i := 1; i < len(points); i++ {
		if util.SameDay(points[i-1].Date, points[i].Date) {
			s.log.Warn("Duplicate trading day in series",
				logger.String("symbol", symbol),
				logger.String("date", points[i].Date.Format("2006-01-02")),
			)
		}
	}

	if len(points) > 0 {
		s.log.Debug("Series loaded",
			logger.String("symbol", symbol),
			logger.String("path", path),
			logger.Int("points", len(points)),
			logger.String("from", points[0].Date.Format("2006-01-02")),
			logger.String("to", points[len(points)-1].Date.Format("2006-01-02")),
		)
	}
	return models.Series{Symbol: symbol, Points: points}, nil
}

func (s *CSVSeriesSource) parse(r io.Reader) ([]models.Point, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	closeIdx := -1
	for i, h := range header {
		if i > 0 && strings.EqualFold(strings.TrimSpace(h), s.closeColumn) {
			closeIdx = i
			break
		}
	}
	if closeIdx < 0 {
		return nil, fmt.Errorf("%w: %q in %v", ErrMissingColumn, s.closeColumn, header)
	}

	var points []models.Point
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		date, ok := util.ParseDate(rec[0])
		if !ok {
			return nil, fmt.Errorf("%w: line %d: bad date %q", ErrMalformedRow, line, rec[0])
		}
		raw := strings.TrimSpace(rec[closeIdx])
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad %s %q", ErrMalformedRow, line, s.closeColumn, raw)
		}
		points = append(points, models.Point{Date: date, Close: price.InexactFloat64()})
	}
	return points, nil
}
