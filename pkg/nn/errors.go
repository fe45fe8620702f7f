package nn

import "errors"

var (
	ErrEmptyInput    = errors.New("nn: empty input")
	ErrShapeMismatch = errors.New("nn: shape mismatch")
	ErrNotCompiled   = errors.New("nn: model not compiled")
	ErrNonFiniteLoss = errors.New("nn: loss is not finite")
	ErrInvalidLayer  = errors.New("nn: invalid layer configuration")
)
