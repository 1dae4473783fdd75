package wavelet

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-tfa/algorithms/common"
	"gonum.org/v1/gonum/floats"
)

// NewPeriodGrid returns steps periods linearly spaced from tMin to tMax
// inclusive. A single step yields [tMin].
func NewPeriodGrid(tMin, tMax float64, steps int) ([]float64, error) {
	if steps < 1 {
		return nil, fmt.Errorf("%w: period grid needs at least one step, got %d", common.ErrInvalidParameter, steps)
	}
	if tMin <= 0 || math.IsNaN(tMin) || math.IsInf(tMin, 0) || math.IsNaN(tMax) || math.IsInf(tMax, 0) {
		return nil, fmt.Errorf("%w: periods must be positive and finite, got [%g, %g]", common.ErrInvalidParameter, tMin, tMax)
	}
	if steps == 1 {
		return []float64{tMin}, nil
	}
	if tMax <= tMin {
		return nil, fmt.Errorf("%w: largest period %g must exceed smallest period %g", common.ErrInvalidParameter, tMax, tMin)
	}

	return floats.Span(make([]float64, steps), tMin, tMax), nil
}

// CheckPeriodGrid verifies that periods is non-empty, finite, positive and
// strictly increasing.
func CheckPeriodGrid(periods []float64) error {
	if len(periods) == 0 {
		return fmt.Errorf("%w: empty period grid", common.ErrInvalidParameter)
	}
	for i, p := range periods {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: period %d is %g", common.ErrInvalidParameter, i, p)
		}
		if i > 0 && p <= periods[i-1] {
			return fmt.Errorf("%w: periods not strictly increasing at index %d", common.ErrInvalidParameter, i)
		}
	}
	return nil
}

// CheckPeriodBounds verifies the Nyquist limit (smallest period ≥ 2*dt) and
// the observation window (largest period ≤ dt*n).
func CheckPeriodBounds(periods []float64, dt float64, n int) error {
	if len(periods) == 0 {
		return fmt.Errorf("%w: empty period grid", common.ErrInvalidParameter)
	}

	nyquist := 2 * dt
	window := dt * float64(n)
	// Tolerate rounding from period grids built in the caller's unit
	eps := 1e-9 * window

	if periods[0] < nyquist-eps {
		return fmt.Errorf("%w: smallest period %g below Nyquist limit %g", common.ErrOutOfBounds, periods[0], nyquist)
	}
	if last := periods[len(periods)-1]; last > window+eps {
		return fmt.Errorf("%w: largest period %g exceeds observation window %g", common.ErrOutOfBounds, last, window)
	}
	return nil
}

// ValidatePeriods runs both grid checks for a signal of n samples
func ValidatePeriods(periods []float64, dt float64, n int) error {
	if err := CheckPeriodGrid(periods); err != nil {
		return err
	}
	return CheckPeriodBounds(periods, dt, n)
}
