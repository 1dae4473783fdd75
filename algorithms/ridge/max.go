package ridge

import (
	"fmt"

	"github.com/RyanBlaney/sonido-tfa/algorithms/common"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Path holds one period index per time index: Path[t] is the modulus row
// that lies on the ridge at column t.
type Path []int

// MaxRidge picks the row of maximum modulus in every column. Columns are
// independent; ties resolve to the lowest period index. An empty or
// all-zero modulus has no ridge.
func MaxRidge(modulus mat.Matrix) (Path, error) {
	if modulus == nil {
		return nil, fmt.Errorf("%w: nil modulus", common.ErrNoRidgeFound)
	}
	rows, cols := modulus.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: empty modulus", common.ErrNoRidgeFound)
	}

	path := make(Path, cols)
	column := make([]float64, rows)
	peak := 0.0
	for t := range cols {
		mat.Col(column, t, modulus)
		idx := floats.MaxIdx(column)
		path[t] = idx
		peak = max(peak, column[idx])
	}

	if peak <= 0 {
		return nil, fmt.Errorf("%w: modulus is zero everywhere", common.ErrNoRidgeFound)
	}
	return path, nil
}

// IndexForPeriod returns the index of the last period strictly below guess,
// the row an initial straight-line ridge starts on. Guesses at or below the
// first period map to 0.
func IndexForPeriod(periods []float64, guess float64) int {
	idx := 0
	for i, p := range periods {
		if p < guess {
			idx = i
		}
	}
	return idx
}

// Power returns the modulus along the path
func (p Path) Power(modulus mat.Matrix) []float64 {
	power := make([]float64, len(p))
	for t, row := range p {
		power[t] = modulus.At(row, t)
	}
	return power
}

// validate checks that the path fits a rows x cols modulus
func (p Path) validate(rows, cols int) error {
	if len(p) != cols {
		return fmt.Errorf("%w: path length %d, modulus has %d columns", common.ErrInvalidParameter, len(p), cols)
	}
	for t, row := range p {
		if row < 0 || row >= rows {
			return fmt.Errorf("%w: path index %d at time %d outside [0, %d)", common.ErrInvalidParameter, row, t, rows)
		}
	}
	return nil
}
