package models

// Comparison is a Diebold-Mariano test of two architectures' forecasts.
// Positive statistics mean A's squared errors are larger than B's.
type Comparison struct {
	Symbol    string
	A         Architecture
	B         Architecture
	N         int
	MeanDiff  float64
	Statistic float64
	PValue    float64
}
