package nn

import "math"

// Callback observes training after every epoch. Returning true stops Fit.
type Callback interface {
	OnEpochEnd(epoch int, loss float64) bool
}

// CallbackFunc adapts a function to Callback.
type CallbackFunc func(epoch int, loss float64) bool

func (f CallbackFunc) OnEpochEnd(epoch int, loss float64) bool { return f(epoch, loss) }

// EarlyStopping stops training once the monitored loss has failed to improve
// by more than MinDelta for Patience consecutive epochs.
type EarlyStopping struct {
	Patience int
	MinDelta float64

	seen         bool
	best         float64
	wait         int
	stoppedEpoch int
}

func NewEarlyStopping(patience int) *EarlyStopping {
	return &EarlyStopping{Patience: patience}
}

func (e *EarlyStopping) OnEpochEnd(epoch int, loss float64) bool {
	if !e.seen || loss < e.best-e.MinDelta {
		e.seen = true
		e.best = loss
		e.wait = 0
		return false
	}
	e.wait++
	if e.wait >= e.Patience {
		e.stoppedEpoch = epoch
		return true
	}
	return false
}

// StoppedEpoch is the epoch at which training was halted, or 0.
func (e *EarlyStopping) StoppedEpoch() int { return e.stoppedEpoch }

// Best is the lowest loss seen so far, or +Inf before the first epoch.
func (e *EarlyStopping) Best() float64 {
	if !e.seen {
		return math.Inf(1)
	}
	return e.best
}
