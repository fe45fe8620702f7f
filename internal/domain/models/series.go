package models

import "time"

// Point is one trading day's closing price.
type Point struct {
	Date  time.Time
	Close float64
}

// Series is a symbol's closing prices in ascending date order.
type Series struct {
	Symbol string
	Points []Point
}

func (s Series) Len() int { return len(s.Points) }

// Closes returns the closing prices in order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Split partitions the series at a calendar date: train holds every point on
// or before at, test every point strictly after it. Both share the backing
// array of s.
func (s Series) Split(at time.Time) (train, test Series) {
	cut := len(s.Points)
	for i, p := range s.Points {
		if p.Date.After(at) {
			cut = i
			break
		}
	}
	return Series{Symbol: s.Symbol, Points: s.Points[:cut:cut]},
		Series{Symbol: s.Symbol, Points: s.Points[cut:]}
}
