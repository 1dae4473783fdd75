package common

import "errors"

// Error taxonomy shared by the analysis packages. Callers match with errors.Is;
// the concrete error usually wraps one of these with the offending value.
var (
	// ErrInvalidParameter reports a malformed argument: non-positive cutoff,
	// step count or jump width, an empty or non-increasing period grid, or
	// non-finite samples.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrOutOfBounds reports a period range that violates the Nyquist limit
	// (T_min < 2*dt) or exceeds the observation window (T_max > dt*N).
	ErrOutOfBounds = errors.New("period range out of bounds")

	// ErrNoRidgeFound reports an empty, degenerate or fully masked ridge.
	// It is recoverable: retry with a lower threshold or another tracer.
	ErrNoRidgeFound = errors.New("no ridge found")

	// ErrNumericDegeneracy reports input that would produce Inf or NaN,
	// such as a zero-variance signal under variance normalization.
	ErrNumericDegeneracy = errors.New("numeric degeneracy")
)
